package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"calx/models"
	"calx/upstream"
	"calx/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// dayState tracks one visible day's availability query.
type dayState struct {
	status    models.DayStatus
	slots     []time.Time
	err       error
	fetchedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{} // closed when the in-flight fetch settles
}

// SlotAggregator maintains per-day availability for one provider and one
// visible range. Each day is fetched by its own cancellable task; a slow
// or failed day never delays the others. The per-day cache is owned
// exclusively by this instance.
type SlotAggregator struct {
	providerID string
	api        upstream.API
	freshFor   time.Duration
	limiter    *rate.Limiter
	now        func() time.Time
	logger     *zap.Logger

	mu     sync.Mutex
	days   []time.Time // visible range, calendar-day order
	states map[string]*dayState
}

// NewSlotAggregator builds an aggregator for one provider. freshFor is
// the window during which a loaded day is not re-fetched.
func NewSlotAggregator(providerID string, api upstream.API, freshFor time.Duration) *SlotAggregator {
	return &SlotAggregator{
		providerID: providerID,
		api:        api,
		freshFor:   freshFor,
		limiter:    rate.NewLimiter(rate.Limit(50), 50),
		now:        time.Now,
		logger:     utils.GetLogger(),
		states:     make(map[string]*dayState),
	}
}

// SetRange replaces the visible range. Fetches for days that left the
// range are cancelled and their eventual settlements discarded, so a
// stale result can never overwrite a day that re-enters later.
func (a *SlotAggregator) SetRange(anchor time.Time, view models.ViewGranularity) {
	days := VisibleDays(anchor, view)

	a.mu.Lock()
	visible := make(map[string]bool, len(days))
	for _, d := range days {
		visible[models.DayKey(d)] = true
	}
	for key, st := range a.states {
		if !visible[key] {
			if st.cancel != nil {
				st.cancel()
			}
			delete(a.states, key)
		}
	}
	a.days = days
	a.mu.Unlock()

	a.Refresh()
}

// Refresh issues a fetch for every visible day that needs one. Past days
// are never queried; loaded days inside the freshness window are kept;
// days already loading are left alone.
func (a *SlotAggregator) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()

	today := models.Midnight(a.now())
	for _, day := range a.days {
		if day.Before(today) {
			continue
		}
		key := models.DayKey(day)
		if st, ok := a.states[key]; ok {
			if st.status == models.DayLoading {
				continue
			}
			if st.status == models.DayLoaded && a.now().Sub(st.fetchedAt) < a.freshFor {
				continue
			}
		}
		a.startFetch(day, key)
	}
}

// startFetch launches the fetch task for one day. Caller holds a.mu.
func (a *SlotAggregator) startFetch(day time.Time, key string) {
	ctx, cancel := context.WithCancel(context.Background())
	st := &dayState{
		status: models.DayLoading,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	a.states[key] = st

	go func() {
		defer close(st.done)
		if err := a.limiter.Wait(ctx); err != nil {
			a.settle(key, st, nil, err)
			return
		}
		slots, err := a.api.GetAvailableSlots(ctx, a.providerID, key)
		a.settle(key, st, slots, err)
	}()
}

// settle records a fetch outcome. The pointer comparison rejects results
// for days that left the range or were re-fetched since.
func (a *SlotAggregator) settle(key string, st *dayState, slots []time.Time, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.states[key] != st {
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			delete(a.states, key)
			return
		}
		st.status = models.DayFailed
		st.err = err
		a.logger.Warn("availability fetch failed",
			zap.String("providerID", a.providerID),
			zap.String("date", key),
			zap.Error(err))
		return
	}
	st.status = models.DayLoaded
	st.slots = collapseDuplicates(slots)
	st.err = nil
	st.fetchedAt = a.now()
}

// Invalidate evicts one day's cached result. A confirmed booking calls
// this for the booked day so the consumed slot disappears on re-fetch.
func (a *SlotAggregator) Invalidate(day time.Time) {
	key := models.DayKey(day)

	a.mu.Lock()
	if st, ok := a.states[key]; ok {
		if st.cancel != nil {
			st.cancel()
		}
		delete(a.states, key)
	}
	tracked := false
	for _, d := range a.days {
		if models.DayKey(d) == key {
			tracked = true
			break
		}
	}
	a.mu.Unlock()

	if tracked {
		a.Refresh()
	}
}

// WaitSettled blocks until no visible day is loading, or ctx expires.
// Each day settles at its own pace; a caller with a short deadline gets
// whatever has arrived so far.
func (a *SlotAggregator) WaitSettled(ctx context.Context) {
	for {
		a.mu.Lock()
		var pending []chan struct{}
		for _, st := range a.states {
			if st.status == models.DayLoading {
				pending = append(pending, st.done)
			}
		}
		a.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, done := range pending {
			select {
			case <-done:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Snapshot derives the merged availability view from current state. It is
// recomputed on every call, never cached, so consumers cannot observe a
// stale merge after a state transition.
func (a *SlotAggregator) Snapshot() models.AvailabilitySnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	today := models.Midnight(a.now())
	snapshot := models.AvailabilitySnapshot{
		Days: make([]models.DayAvailability, 0, len(a.days)),
	}
	var merged []time.Time

	for _, day := range a.days {
		key := models.DayKey(day)
		if day.Before(today) {
			// Past days yield an implicit empty, non-loading result.
			snapshot.Days = append(snapshot.Days, models.DayAvailability{
				Date:   key,
				Status: models.DayLoaded,
			})
			continue
		}

		st, ok := a.states[key]
		if !ok {
			snapshot.Days = append(snapshot.Days, models.DayAvailability{
				Date:   key,
				Status: models.DayNotRequested,
			})
			continue
		}

		entry := models.DayAvailability{Date: key, Status: st.status}
		switch st.status {
		case models.DayLoaded:
			entry.Slots = st.slots
			merged = append(merged, st.slots...)
		case models.DayFailed:
			entry.Error = st.err.Error()
		}
		snapshot.Days = append(snapshot.Days, entry)
	}

	snapshot.Events = ProjectEvents(merged)
	return snapshot
}

// Close cancels every in-flight fetch and drops all state.
func (a *SlotAggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, st := range a.states {
		if st.cancel != nil {
			st.cancel()
		}
		delete(a.states, key)
	}
	a.days = nil
}
