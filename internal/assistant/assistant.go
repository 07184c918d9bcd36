// Package assistant gates questions to the completion API behind the hourly
// request allowance and keeps the session's conversation log.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/grantdesk/internal/composer"
	"github.com/kalambet/grantdesk/internal/form"
	"github.com/kalambet/grantdesk/internal/proxy"
	"github.com/kalambet/grantdesk/internal/quota"
)

const (
	// Greeting seeds every conversation.
	Greeting = "Yá'át'ééh! I'm here to help with your housing grant application. Ask me about eligibility, required documents, or any field on the form."

	// Fallback is appended when a request to the completion API fails.
	Fallback = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment."

	// Temperature is the fixed sampling temperature sent with every request.
	Temperature = 0.7

	DefaultModel = "gpt-3.5-turbo"
)

var (
	// ErrEmptyQuestion is returned for empty or whitespace-only input.
	ErrEmptyQuestion = errors.New("empty question")

	// ErrBusy is returned while another question is in flight.
	ErrBusy = errors.New("a question is already in flight")
)

// Completer sends a chat completion request and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req proxy.ChatRequest) (string, error)
}

// QuotaStore loads, reconciles and persists the request allowance.
type QuotaStore interface {
	Reconcile(now time.Time) (quota.State, error)
	Save(s quota.State) error
}

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one message of the conversation log.
type Entry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Status describes how a question was handled.
type Status int

const (
	StatusAnswered Status = iota
	StatusLimited
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusLimited:
		return "limited"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Reply is the outcome of one accepted question. Text is the assistant entry
// that was appended to the conversation.
type Reply struct {
	Status            Status
	Text              string
	MinutesUntilReset int
	Quota             quota.State
}

// Assistant is the rate-governed chat session. Only one question may be in
// flight at a time.
type Assistant struct {
	client    Completer
	quota     QuotaStore
	model     string
	now       func() time.Time
	logger    *slog.Logger
	sessionID string

	mu   sync.Mutex
	busy bool
	log  []Entry
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithModel sets the model identifier sent to the API.
func WithModel(model string) Option {
	return func(a *Assistant) {
		if model != "" {
			a.model = model
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// WithLogger sets the logger. The session ID is attached to every record.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// New creates a session seeded with the greeting.
func New(client Completer, q QuotaStore, opts ...Option) *Assistant {
	a := &Assistant{
		client:    client,
		quota:     q,
		model:     DefaultModel,
		now:       time.Now,
		logger:    slog.Default(),
		sessionID: uuid.NewString(),
		log:       []Entry{{Role: RoleAssistant, Content: Greeting}},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("session", a.sessionID)
	return a
}

// SessionID returns the random identifier of this session.
func (a *Assistant) SessionID() string {
	return a.sessionID
}

// Conversation returns a copy of the conversation log.
func (a *Assistant) Conversation() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Entry, len(a.log))
	copy(out, a.log)
	return out
}

// Busy reports whether a question is in flight.
func (a *Assistant) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Ask handles one question asked while the form is in the state snap.
//
// Empty input returns ErrEmptyQuestion and a concurrent call returns ErrBusy;
// neither touches the conversation or the allowance. Every other outcome,
// including a refused or failed request, is reported through Reply and
// appended to the conversation. Only a successful answer is charged.
func (a *Assistant) Ask(ctx context.Context, question string, snap form.Snapshot) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}

	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return Reply{}, ErrBusy
	}
	a.busy = true
	a.log = append(a.log, Entry{Role: RoleUser, Content: question})
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
	}()

	now := a.now()
	state, err := a.quota.Reconcile(now)
	if err != nil {
		a.logger.Error("loading request allowance failed", "error", err)
		return a.reply(Reply{Status: StatusFailed, Text: Fallback}), nil
	}

	if state.Exhausted() {
		mins := state.MinutesUntilReset(now)
		a.logger.Info("request refused, hourly limit reached", "count", state.Count, "minutes_until_reset", mins)
		return a.reply(Reply{
			Status:            StatusLimited,
			Text:              LimitMessage(mins),
			MinutesUntilReset: mins,
			Quota:             state,
		}), nil
	}

	req := proxy.ChatRequest{
		Model:       a.model,
		Messages:    composer.Messages(snap, question),
		MaxTokens:   quota.MaxResponseTokens,
		Temperature: Temperature,
	}

	start := time.Now()
	text, err := a.client.Complete(ctx, req)
	if err != nil {
		a.logger.Warn("completion request failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return a.reply(Reply{Status: StatusFailed, Text: Fallback, Quota: state}), nil
	}

	next := state.Charge()
	if err := a.quota.Save(next); err != nil {
		a.logger.Error("persisting request allowance failed", "error", err)
	}
	a.logger.Debug("question answered",
		"step", int(snap.Step),
		"count", next.Count,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return a.reply(Reply{Status: StatusAnswered, Text: text, Quota: next}), nil
}

// reply appends r.Text as an assistant entry and returns r.
func (a *Assistant) reply(r Reply) Reply {
	a.mu.Lock()
	a.log = append(a.log, Entry{Role: RoleAssistant, Content: r.Text})
	a.mu.Unlock()
	return r
}

// LimitMessage is the text shown when the hourly allowance is used up.
func LimitMessage(minutes int) string {
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	return fmt.Sprintf("You've reached the limit of %d questions per hour. Please try again in %d %s.", quota.MaxRequests, minutes, unit)
}
