// File: utils/provider_session.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
)

// ProviderSession is the signed-in provider identity the gateway acts for.
// It is persisted so a restart does not log the provider out; the rest of
// the system only ever consumes the opaque ProviderID.
type ProviderSession struct {
	ProviderID    string    `json:"providerId"`
	Name          string    `json:"name"`
	Token         string    `json:"token,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// SaveProviderSession stores the provider session in redis with a TTL.
func SaveProviderSession(client *redis.Client, session ProviderSession) error {
	if session.ProviderID == "" {
		return fmt.Errorf("provider session requires a provider id")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.LastUpdatedAt = time.Now()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal provider session: %w", err)
	}
	ctx := context.Background()
	if err := client.Set(ctx, ProviderSessionPrefix+session.ProviderID, data, ProviderSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save provider session: %w", err)
	}
	return nil
}

// GetProviderSession retrieves the provider session from redis. A session
// whose token has expired is treated as absent.
func GetProviderSession(client *redis.Client, providerID string) (*ProviderSession, error) {
	ctx := context.Background()
	data, err := client.Get(ctx, ProviderSessionPrefix+providerID).Result()
	if err != nil {
		return nil, err
	}
	var session ProviderSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider session: %w", err)
	}
	if session.Token != "" && TokenExpired(session.Token, time.Now()) {
		_ = ClearProviderSession(client, providerID)
		return nil, redis.Nil
	}
	return &session, nil
}

// ClearProviderSession removes a provider session from redis (logout).
func ClearProviderSession(client *redis.Client, providerID string) error {
	ctx := context.Background()
	return client.Del(ctx, ProviderSessionPrefix+providerID).Err()
}

// TokenExpired inspects the token's exp claim without verifying the
// signature; the upstream owns the signing key, the gateway only needs to
// know when to stop attaching a stale token.
func TokenExpired(tokenString string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return true
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return false
	}
	return now.Unix() >= int64(exp)
}
