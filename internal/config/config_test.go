package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockSecrets is a test double for the secrets file.
type mockSecrets struct {
	value string
	err   error
}

func (m mockSecrets) Get(service, account string) (string, error) {
	return m.value, m.err
}

// memBackend is an in-memory ConfigBackend.
type memBackend map[string]string

func (m memBackend) GetString(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memBackend) SetString(key, val string) error {
	m[key] = val
	return nil
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestDefaults verifies all default values are applied when nothing is configured.
func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(memBackend{}, mockSecrets{err: errors.New("none")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Assistant.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("Assistant.BaseURL = %q", cfg.Assistant.BaseURL)
	}
	if cfg.Assistant.Model != "gpt-3.5-turbo" {
		t.Errorf("Assistant.Model = %q", cfg.Assistant.Model)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Storage.DataDir == "" {
		t.Error("Storage.DataDir is empty")
	}
	if cfg.Assistant.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.Assistant.APIKey)
	}
}

// TestBackendValues verifies values from the config file backend are applied.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	b := memBackend{
		"assistant.model":   "gpt-4o-mini",
		"storage.data_dir":  "/tmp/grantdesk-test",
		"assistant.api_key": "must-be-ignored",
	}
	cfg, err := loadWith(b, mockSecrets{err: errors.New("none")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.Assistant.Model)
	}
	if cfg.Storage.DataDir != "/tmp/grantdesk-test" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Assistant.APIKey != "" {
		t.Errorf("secret read from config file: %q", cfg.Assistant.APIKey)
	}
}

// TestEnvOverride verifies that environment variables override config file values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("GRANTDESK_ASSISTANT_MODEL", "env-model")
	t.Setenv("GRANTDESK_API_KEY", "env-key")

	cfg, err := loadWith(memBackend{"assistant.model": "file-model"}, mockSecrets{value: "secret-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Assistant.Model != "env-model" {
		t.Errorf("Model = %q, want %q", cfg.Assistant.Model, "env-model")
	}
	if cfg.Assistant.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Assistant.APIKey, "env-key")
	}
}

// TestDotEnv verifies a .env file supplies values that are not already set.
func TestDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("GRANTDESK_API_KEY")
	os.Unsetenv("GRANTDESK_LOG_LEVEL")
	t.Cleanup(func() {
		os.Unsetenv("GRANTDESK_API_KEY")
		os.Unsetenv("GRANTDESK_LOG_LEVEL")
	})

	path := writeTempFile(t, ".env", "GRANTDESK_API_KEY=dotenv-key\nGRANTDESK_LOG_LEVEL=debug\n")

	cfg, err := loadWith(memBackend{}, mockSecrets{err: errors.New("none")}, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.APIKey != "dotenv-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Assistant.APIKey, "dotenv-key")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestMissingDotEnvIgnored(t *testing.T) {
	clearEnv(t)
	_, err := loadWith(memBackend{}, mockSecrets{}, filepath.Join(t.TempDir(), "nope.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestSecretsFallback verifies the secrets file is consulted when no API key is in the environment.
func TestSecretsFallback(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(memBackend{}, mockSecrets{value: "secret-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assistant.APIKey != "secret-key" {
		t.Errorf("APIKey = %q, want %q", cfg.Assistant.APIKey, "secret-key")
	}
}

func TestSecretsFile(t *testing.T) {
	path := writeTempFile(t, "secrets.json", `{"grantdesk":{"api_key":" sk-123 \n"}}`)

	got, err := secretsFile{path: path}.Get("grantdesk", "api_key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "sk-123" {
		t.Errorf("Get = %q, want %q", got, "sk-123")
	}

	if _, err := (secretsFile{path: path}).Get("grantdesk", "other"); err == nil {
		t.Error("expected error for missing account")
	}
	if _, err := (secretsFile{path: filepath.Join(t.TempDir(), "x.json")}).Get("grantdesk", "api_key"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestRequireAPIKey(t *testing.T) {
	err := Config{}.RequireAPIKey()
	if err == nil {
		t.Fatal("expected error for missing API key, got nil")
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Errorf("error = %q, want it to contain %q", err.Error(), "missing required config")
	}

	cfg := Config{Assistant: AssistantConfig{APIKey: "k"}}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey = %v, want nil", err)
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantdesk", "config.json")

	b := newFileBackend(path)
	if err := b.SetString("assistant.model", "gpt-4o"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	reloaded := newFileBackend(path)
	v, ok, err := reloaded.GetString("assistant.model")
	if err != nil || !ok || v != "gpt-4o" {
		t.Errorf("GetString = %q, %v, %v; want gpt-4o", v, ok, err)
	}
}

func TestFileBackend_CorruptFileUsesDefaults(t *testing.T) {
	path := writeTempFile(t, "config.json", "{not json")
	b := newFileBackend(path)
	if _, ok, _ := b.GetString("assistant.model"); ok {
		t.Error("expected no values from corrupt file")
	}
}

func TestSetKey(t *testing.T) {
	b := memBackend{}

	if err := setKeyWith(b, "assistant.model", "gpt-4o"); err != nil {
		t.Fatalf("setKeyWith: %v", err)
	}
	if b["assistant.model"] != "gpt-4o" {
		t.Errorf("stored = %q", b["assistant.model"])
	}

	if err := setKeyWith(b, "assistant.api_key", "x"); err == nil {
		t.Error("expected error setting secret")
	}
	if err := setKeyWith(b, "nope", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := setKeyWith(b, "log.level", "loud"); err == nil {
		t.Error("expected error for invalid log level")
	}
	if err := setKeyWith(b, "log.level", "DEBUG"); err != nil {
		t.Errorf("setKeyWith(log.level, DEBUG) = %v", err)
	}
}

func TestShowAllHidesSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Assistant.APIKey = "sk-secret"
	for _, k := range ShowAll(cfg) {
		if k.Key == "assistant.api_key" || k.Value == "sk-secret" {
			t.Errorf("secret exposed: %+v", k)
		}
	}
	if len(ValidKeys()) != len(ShowAll(cfg)) {
		t.Errorf("ValidKeys = %v, ShowAll has %d entries", ValidKeys(), len(ShowAll(cfg)))
	}
}
