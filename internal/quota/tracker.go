package quota

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kalambet/grantdesk/internal/storage"
)

// Keys under which the state is persisted.
const (
	KeyCount       = "assistant.request_count"
	KeyWindowStart = "assistant.window_start_ms"
)

// KV abstracts the local key-value store holding the quota keys.
type KV interface {
	Get(key string) (string, error)
	SetMany(values map[string]string) error
	Delete(keys ...string) error
}

// Tracker loads, reconciles and saves the quota state in a KV store.
type Tracker struct {
	kv     KV
	logger *slog.Logger
}

// NewTracker creates a Tracker backed by kv.
func NewTracker(kv KV) *Tracker {
	return &Tracker{kv: kv, logger: slog.Default()}
}

// Load reads the persisted state. Missing or unparsable keys read as zero,
// which any later Reconcile treats as an expired window.
func (t *Tracker) Load() (State, error) {
	count, err := t.readInt(KeyCount)
	if err != nil {
		return State{}, err
	}
	start, err := t.readInt(KeyWindowStart)
	if err != nil {
		return State{}, err
	}
	if count < 0 {
		count = 0
	}
	return State{Count: int(count), WindowStart: start}, nil
}

func (t *Tracker) readInt(key string) (int64, error) {
	raw, err := t.kv.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", key, err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		t.logger.Warn("ignoring malformed quota value", "key", key, "value", raw)
		return 0, nil
	}
	return v, nil
}

// Save writes both keys together.
func (t *Tracker) Save(s State) error {
	err := t.kv.SetMany(map[string]string{
		KeyCount:       strconv.Itoa(s.Count),
		KeyWindowStart: strconv.FormatInt(s.WindowStart, 10),
	})
	if err != nil {
		return fmt.Errorf("saving quota state: %w", err)
	}
	return nil
}

// Reconcile loads the state and, when its window has elapsed at now, resets
// it to {0, now} and persists the reset.
func (t *Tracker) Reconcile(now time.Time) (State, error) {
	s, err := t.Load()
	if err != nil {
		return State{}, err
	}
	s, expired := s.Reconcile(now)
	if !expired {
		return s, nil
	}
	t.logger.Debug("quota window expired, starting a new one", "window_start", s.WindowStart)
	if err := t.Save(s); err != nil {
		return s, err
	}
	return s, nil
}

// Clear removes the persisted state entirely.
func (t *Tracker) Clear() error {
	if err := t.kv.Delete(KeyCount, KeyWindowStart); err != nil {
		return fmt.Errorf("clearing quota state: %w", err)
	}
	return nil
}

// Peek returns the state as it would be seen at now without persisting a
// window reset.
func (t *Tracker) Peek(now time.Time) (State, error) {
	s, err := t.Load()
	if err != nil {
		return State{}, err
	}
	s, _ = s.Reconcile(now)
	return s, nil
}
