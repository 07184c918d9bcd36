// Package wizard is the terminal view layer of the grant application: it
// renders each step, prompts for field values and hosts the chat panel.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/kalambet/grantdesk/internal/assistant"
	"github.com/kalambet/grantdesk/internal/form"
)

// Asker is the part of the assistant the chat panel uses.
type Asker interface {
	Ask(ctx context.Context, question string, snap form.Snapshot) (assistant.Reply, error)
	Conversation() []assistant.Entry
}

// Menu entries shown after each step.
const (
	actionNext = iota
	actionPrevious
	actionAsk
	actionReview
	actionStartOver
	actionQuit
)

var menuOptions = []string{
	"Next step",
	"Previous step",
	"Ask the assistant",
	"Review answers",
	"Start over",
	"Quit",
}

// Wizard walks the user through the application steps.
type Wizard struct {
	driver   PromptDriver
	ctl      *form.Controller
	asker    Asker
	validate *validator.Validate
	logger   *slog.Logger

	// shown counts conversation entries already printed.
	shown int
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Wizard) { w.logger = l }
}

// New creates a wizard over ctl. A nil asker disables the chat panel.
func New(driver PromptDriver, ctl *form.Controller, asker Asker, opts ...Option) *Wizard {
	w := &Wizard{
		driver:   driver,
		ctl:      ctl,
		asker:    asker,
		validate: validator.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drives the wizard until the user quits and returns the final snapshot.
// ErrAborted is returned when the user interrupts a prompt.
func (w *Wizard) Run(ctx context.Context) (form.Snapshot, error) {
	fill := true
	for {
		if fill {
			if err := w.fillStep(ctx); err != nil {
				return w.ctl.Snapshot(), err
			}
			fill = false
		}

		idx, err := w.driver.Select(ctx, SelectConfig{
			Message:      fmt.Sprintf("Step %d of %d: what next?", w.ctl.Step(), form.StepsTotal),
			Options:      menuOptions,
			DefaultIndex: actionNext,
		})
		if err != nil {
			return w.ctl.Snapshot(), err
		}

		switch idx {
		case actionNext:
			before := w.ctl.Step()
			fill = w.ctl.Next() != before
		case actionPrevious:
			before := w.ctl.Step()
			fill = w.ctl.Previous() != before
		case actionAsk:
			if err := w.chat(ctx); err != nil {
				return w.ctl.Snapshot(), err
			}
		case actionReview:
			if err := w.review(ctx); err != nil {
				return w.ctl.Snapshot(), err
			}
		case actionStartOver:
			ok, err := w.driver.Confirm(ctx, ConfirmConfig{
				Message: "Discard every answer and start over?",
			})
			if err != nil {
				return w.ctl.Snapshot(), err
			}
			if ok {
				w.ctl.Reset()
				w.logger.Debug("form reset")
				fill = true
			}
		case actionQuit:
			return w.ctl.Snapshot(), nil
		}
	}
}

// fillStep renders the current step and prompts each of its fields.
func (w *Wizard) fillStep(ctx context.Context) error {
	view := w.ctl.View()
	header := fmt.Sprintf("\n== Step %d of %d: %s ==", view.Step, form.StepsTotal, view.Title)
	if err := w.driver.Info(ctx, header); err != nil {
		return err
	}
	if view.Description != "" {
		if err := w.driver.Info(ctx, view.Description); err != nil {
			return err
		}
	}

	for _, f := range view.Fields {
		value, err := w.promptField(ctx, f)
		if err != nil {
			return err
		}
		w.ctl.SetField(f.Name, value)
	}
	return nil
}

func (w *Wizard) promptField(ctx context.Context, f form.Field) (string, error) {
	current := w.ctl.Field(f.Name)
	message := f.Label
	if f.Required {
		message += " *"
	}

	switch f.Kind {
	case form.KindSelect:
		def := indexOf(f.Options, current)
		if def < 0 {
			def = 0
		}
		idx, err := w.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      f.Options,
			DefaultIndex: def,
			Help:         f.Help,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(f.Options) {
			return current, nil
		}
		return f.Options[idx], nil

	case form.KindMultiline:
		return w.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: current,
			Help:    f.Help,
		})

	case form.KindConfirm:
		ok, err := w.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Default: current == "yes",
			Help:    f.Help,
		})
		if err != nil {
			return "", err
		}
		if ok {
			return "yes", nil
		}
		return "no", nil

	default:
		value, err := w.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   current,
			Help:      f.Help,
			Validator: w.validatorFor(f),
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(value), nil
	}
}

// validatorFor returns a format check for f, or nil when the field has no
// validate tag. Empty values always pass; required is only a hint.
func (w *Wizard) validatorFor(f form.Field) func(string) error {
	if f.Validate == "" {
		return nil
	}
	return func(value string) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		if err := w.validate.Var(value, f.Validate); err != nil {
			return formatError(f, err)
		}
		return nil
	}
}

func formatError(f form.Field, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%s: %w", f.Label, err)
	}
	var hint string
	switch verrs[0].Tag() {
	case "email":
		hint = "enter an address like name@example.com"
	case "datetime":
		hint = "use the format YYYY-MM-DD"
	case "ssn":
		hint = "enter nine digits like 123-45-6789"
	case "numeric":
		hint = "use digits only"
	case "len":
		hint = fmt.Sprintf("must be exactly %s characters", verrs[0].Param())
	case "alphanum":
		hint = "use letters and digits only"
	default:
		hint = "value is not valid"
	}
	return fmt.Errorf("%s: %s", f.Label, hint)
}

// review prints every answer grouped by step and flags required fields that
// are still empty.
func (w *Wizard) review(ctx context.Context) error {
	snap := w.ctl.Snapshot()
	catalog := w.ctl.Catalog()
	for s := form.FirstStep; s <= form.LastStep; s++ {
		view := catalog.ViewOf(s)
		if len(view.Fields) == 0 {
			continue
		}
		if err := w.driver.Info(ctx, fmt.Sprintf("\n%d. %s", s, view.Title)); err != nil {
			return err
		}
		for _, f := range view.Fields {
			value := snap.Get(f.Name)
			switch {
			case value == "" && f.Required:
				value = "(missing)"
			case value == "":
				value = "-"
			}
			if err := w.driver.Info(ctx, fmt.Sprintf("   %s: %s", f.Label, value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// chat runs the assistant panel until the user submits a blank line.
func (w *Wizard) chat(ctx context.Context) error {
	if w.asker == nil {
		return w.driver.Info(ctx, "The assistant is not configured.")
	}
	if err := w.printConversation(ctx); err != nil {
		return err
	}

	for {
		q, err := w.driver.Input(ctx, InputConfig{
			Message: "Your question",
			Help:    "Leave blank to return to the form.",
		})
		if err != nil {
			return err
		}
		if strings.TrimSpace(q) == "" {
			return nil
		}

		_, err = w.asker.Ask(ctx, q, w.ctl.Snapshot())
		switch {
		case errors.Is(err, assistant.ErrEmptyQuestion), errors.Is(err, assistant.ErrBusy):
			continue
		case err != nil:
			return err
		}
		if err := w.printConversation(ctx); err != nil {
			return err
		}
	}
}

// printConversation prints the entries appended since the last call.
func (w *Wizard) printConversation(ctx context.Context) error {
	entries := w.asker.Conversation()
	if w.shown > len(entries) {
		w.shown = 0
	}
	for _, e := range entries[w.shown:] {
		if e.Role != assistant.RoleAssistant {
			continue
		}
		if err := w.driver.Info(ctx, "Assistant: "+Sanitize(e.Content)); err != nil {
			return err
		}
	}
	w.shown = len(entries)
	return nil
}

var strict = bluemonday.StrictPolicy()

// Sanitize strips markup from assistant text for plain terminal display.
func Sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(text)))
}
