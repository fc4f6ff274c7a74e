package booking

import (
	"fmt"
	"strings"
	"time"

	"calx/models"
)

// CalendarFileName is the download name for exported invites.
const CalendarFileName = "meeting.ics"

// CalendarFileContentType is the MIME type served with the invite.
const CalendarFileContentType = "text/calendar;charset=utf-8"

const icsProdID = "-//CalX//Booking//EN"

// formatICSDate renders an instant in the compact UTC basic format.
func formatICSDate(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// EncodeCalendarInvite renders a calendar-invite payload for a confirmed
// booking. The line set and order are fixed; the UID is the booking id
// and DTSTAMP is the encode instant, so re-encoding yields a different,
// equally valid payload. Names and emails are inserted verbatim; callers
// own any sanitization of guest input.
func EncodeCalendarInvite(confirmation models.BookingConfirmation, guest models.BookingDraft, now time.Time) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + icsProdID,
		"BEGIN:VEVENT",
		"UID:" + confirmation.ID,
		"DTSTAMP:" + formatICSDate(now),
		fmt.Sprintf("ORGANIZER;CN=\"%s\":mailto:%s", confirmation.Host.Name, confirmation.Host.Email),
		"DTSTART:" + formatICSDate(confirmation.StartTime),
		"DTEND:" + formatICSDate(confirmation.EndTime),
		"SUMMARY:Meeting with " + confirmation.Host.Name,
		"DESCRIPTION:Booking confirmation for " + guest.GuestName + ".",
		fmt.Sprintf("ATTENDEE;CN=\"%s\";ROLE=REQ-PARTICIPANT:mailto:%s", guest.GuestName, guest.GuestEmail),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return []byte(strings.Join(lines, "\n"))
}
