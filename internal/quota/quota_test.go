package quota

import (
	"testing"
	"time"
)

const t0 int64 = 1_700_000_000_000

func at(ms int64) time.Time { return time.UnixMilli(ms) }

func TestWindowConstants(t *testing.T) {
	if Window != time.Hour {
		t.Errorf("Window = %v, want 1h", Window)
	}
	if MaxRequests != 20 {
		t.Errorf("MaxRequests = %d, want 20", MaxRequests)
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		state       State
		now         int64
		want        State
		wantExpired bool
	}{
		{"within window", State{Count: 5, WindowStart: t0}, t0 + 1000, State{Count: 5, WindowStart: t0}, false},
		{"exactly at window end", State{Count: 5, WindowStart: t0}, t0 + WindowMillis, State{Count: 5, WindowStart: t0}, false},
		{"one ms past window", State{Count: 5, WindowStart: t0}, t0 + WindowMillis + 1, State{Count: 0, WindowStart: t0 + WindowMillis + 1}, true},
		{"long past window", State{Count: 20, WindowStart: t0}, t0 + 3_700_000, State{Count: 0, WindowStart: t0 + 3_700_000}, true},
		{"zero state", State{}, t0, State{Count: 0, WindowStart: t0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, expired := tt.state.Reconcile(at(tt.now))
			if got != tt.want {
				t.Errorf("Reconcile = %+v, want %+v", got, tt.want)
			}
			if expired != tt.wantExpired {
				t.Errorf("expired = %v, want %v", expired, tt.wantExpired)
			}
		})
	}
}

func TestMinutesUntilReset(t *testing.T) {
	tests := []struct {
		elapsed int64
		want    int
	}{
		{1000, 60},
		{0, 60},
		{60_000, 59},
		{60_001, 59},
		{WindowMillis - 1, 1},
		{WindowMillis, 0},
		{WindowMillis + 5000, 0},
	}
	for _, tt := range tests {
		s := State{Count: 20, WindowStart: t0}
		if got := s.MinutesUntilReset(at(t0 + tt.elapsed)); got != tt.want {
			t.Errorf("elapsed %d: MinutesUntilReset = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestChargeKeepsWindowStart(t *testing.T) {
	s := State{Count: 3, WindowStart: t0}
	got := s.Charge()
	if got.Count != 4 {
		t.Errorf("Count = %d, want 4", got.Count)
	}
	if got.WindowStart != t0 {
		t.Errorf("WindowStart = %d, want %d", got.WindowStart, t0)
	}
}

func TestExhaustedAndRemaining(t *testing.T) {
	if (State{Count: 19}).Exhausted() {
		t.Error("19 should not be exhausted")
	}
	if !(State{Count: 20}).Exhausted() {
		t.Error("20 should be exhausted")
	}
	if got := (State{Count: 15}).Remaining(); got != 5 {
		t.Errorf("Remaining = %d, want 5", got)
	}
	if got := (State{Count: 25}).Remaining(); got != 0 {
		t.Errorf("Remaining over limit = %d, want 0", got)
	}
}

func TestResetsAt(t *testing.T) {
	s := State{WindowStart: t0}
	if got, want := s.ResetsAt(), at(t0+WindowMillis); !got.Equal(want) {
		t.Errorf("ResetsAt = %v, want %v", got, want)
	}
}
