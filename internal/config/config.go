package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
)

type Config struct {
	Assistant AssistantConfig
	Storage   StorageConfig
	Log       LogConfig
}

type AssistantConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Assistant: AssistantConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-3.5-turbo",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file, a .env file in the
// working directory, GRANTDESK_* environment variables and the secrets file,
// in increasing order of precedence for everything except the API key, which
// only comes from the environment or the secrets file.
//
// The config file lives at $XDG_CONFIG_HOME/grantdesk/config.json and the
// secrets file at $XDG_DATA_HOME/grantdesk/secrets.json.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), secretsFile{path: secretsFilePath()}, ".env")
}

// secretStore abstracts the secrets file for testing.
type secretStore interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, secrets secretStore, envFiles ...string) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	for _, f := range envFiles {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("could not read env file", "path", f, "error", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Assistant.APIKey == "" {
		if key, err := secrets.Get("grantdesk", "api_key"); err == nil && key != "" {
			cfg.Assistant.APIKey = key
		}
	}

	return cfg, nil
}

// RequireAPIKey returns an error when no API credential is configured.
func (c Config) RequireAPIKey() error {
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("missing required config: assistant API key. "+
			"Set it via environment variable GRANTDESK_API_KEY, a .env file, "+
			"or the secrets file at %s", secretsFilePath())
	}
	return nil
}
