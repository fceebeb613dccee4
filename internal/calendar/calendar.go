// Package calendar defines the free/busy collaborator the ranking
// engine consults. Only the interface and the signal derivation live
// here; fetching real events belongs to an external provider. The
// engine must keep working when no provider is wired or a fetch fails,
// so every failure path degrades to "no calendar data".
package calendar

import (
	"context"
	"time"
)

// Event is one busy block on the user's calendar.
type Event struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Provider fetches events overlapping [from, to).
type Provider interface {
	Events(ctx context.Context, from, to time.Time) ([]Event, error)
}

// Signal is the calendar-derived slice of the user context. The zero
// value means "no calendar data".
type Signal struct {
	Busy                bool           `json:"busy"`
	NextEventIn         *time.Duration `json:"next_event_in,omitempty"`
	JustFinishedMeeting bool           `json:"just_finished_meeting"`
}

// lookahead bounds the event window consulted per snapshot; meetings
// further out than this do not affect current scoring.
const lookahead = 12 * time.Hour

// finishedWindow is how recently a meeting must have ended to count as
// "just finished".
const finishedWindow = 15 * time.Minute

// Snapshot derives the current Signal from the provider. A nil provider
// or a fetch error yields the zero Signal.
func Snapshot(ctx context.Context, p Provider, now time.Time) Signal {
	if p == nil {
		return Signal{}
	}
	events, err := p.Events(ctx, now.Add(-lookahead), now.Add(lookahead))
	if err != nil {
		return Signal{}
	}

	var sig Signal
	var next *time.Time
	for _, ev := range events {
		if !now.Before(ev.Start) && now.Before(ev.End) {
			sig.Busy = true
		}
		if ev.Start.After(now) && (next == nil || ev.Start.Before(*next)) {
			start := ev.Start
			next = &start
		}
		ended := now.Sub(ev.End)
		if ended >= 0 && ended <= finishedWindow {
			sig.JustFinishedMeeting = true
		}
	}
	if next != nil {
		d := next.Sub(now)
		sig.NextEventIn = &d
	}
	return sig
}
