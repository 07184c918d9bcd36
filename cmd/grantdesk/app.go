package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kalambet/grantdesk/internal/assistant"
	"github.com/kalambet/grantdesk/internal/form"
	"github.com/kalambet/grantdesk/internal/proxy"
	"github.com/kalambet/grantdesk/internal/quota"
	"github.com/kalambet/grantdesk/internal/storage"
)

// openTracker opens the local store and returns a quota tracker over it.
// The caller closes the store.
func openTracker() (*quota.Tracker, *storage.Store, error) {
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening storage: %w", err)
	}
	return quota.NewTracker(store), store, nil
}

// newAssistant builds an assistant session over tracker. It fails when no
// API key is configured.
func newAssistant(tracker *quota.Tracker) (*assistant.Assistant, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	client := proxy.NewClientWithBaseURL(cfg.Assistant.APIKey, cfg.Assistant.BaseURL)
	return assistant.New(client, tracker, assistant.WithModel(cfg.Assistant.Model)), nil
}

func newController() *form.Controller {
	return form.NewController(nil)
}

// loadAnswers reads a flat JSON object of field values into ctl.
func loadAnswers(ctl *form.Controller, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading form file: %w", err)
	}
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parsing form file %s: %w", path, err)
	}
	for name := range values {
		if _, ok := ctl.Catalog().Lookup(name); !ok {
			printWarning("Unknown field %q in %s", name, path)
		}
	}
	ctl.Load(values)
	return nil
}

// saveAnswers writes the snapshot fields as indented JSON.
func saveAnswers(snap form.Snapshot, path string) error {
	if err := os.WriteFile(path, []byte(snap.JSON()+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing form file: %w", err)
	}
	return nil
}

// goToStep moves ctl forward to step, clamped to the valid range.
func goToStep(ctl *form.Controller, step int) {
	target := form.Step(step).Clamp()
	for ctl.Step() < target {
		ctl.Next()
	}
}
