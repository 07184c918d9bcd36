// Package quota implements the fixed-window request allowance for the
// assistant. The window is anchored at the first request of each cycle and
// only the passage of the full window resets it.
package quota

import (
	"time"
)

const (
	// MaxRequests is the number of assistant requests allowed per window.
	MaxRequests = 20

	// WindowMillis is the window length in epoch milliseconds.
	WindowMillis int64 = 3_600_000

	// MaxResponseTokens is the advisory response-size cap passed to the API.
	MaxResponseTokens = 150
)

// Window is WindowMillis as a time.Duration.
const Window = time.Duration(WindowMillis) * time.Millisecond

// State is the persisted request counter and the start of its window.
type State struct {
	Count       int
	WindowStart int64 // epoch milliseconds
}

// Expired reports whether the full window has elapsed at now.
func (s State) Expired(now time.Time) bool {
	return now.UnixMilli()-s.WindowStart > WindowMillis
}

// Reconcile returns the state to use at now. An expired state is replaced
// with {0, now}; the bool reports whether that happened.
func (s State) Reconcile(now time.Time) (State, bool) {
	if s.Expired(now) {
		return State{Count: 0, WindowStart: now.UnixMilli()}, true
	}
	return s, false
}

// Exhausted reports whether the allowance is used up.
func (s State) Exhausted() bool {
	return s.Count >= MaxRequests
}

// Remaining returns the number of requests left in the window.
func (s State) Remaining() int {
	if s.Count >= MaxRequests {
		return 0
	}
	return MaxRequests - s.Count
}

// Charge returns the state after one successful request. The window start is
// left unchanged.
func (s State) Charge() State {
	return State{Count: s.Count + 1, WindowStart: s.WindowStart}
}

// ResetsAt returns the wall-clock time at which the window ends.
func (s State) ResetsAt() time.Time {
	return time.UnixMilli(s.WindowStart + WindowMillis)
}

// MinutesUntilReset returns ceil((windowStart + window - now) / 60000),
// never less than zero.
func (s State) MinutesUntilReset(now time.Time) int {
	left := s.WindowStart + WindowMillis - now.UnixMilli()
	if left <= 0 {
		return 0
	}
	return int((left + 59_999) / 60_000)
}
