package config

import (
	"fmt"
	"os"
)

type keySpec struct {
	key     string
	env     string
	secret  bool
	apply   func(cfg *Config, v string)
	extract func(cfg Config) string
}

var specs = []keySpec{
	{
		key: "assistant.base_url", env: "GRANTDESK_ASSISTANT_BASE_URL",
		apply:   func(cfg *Config, v string) { cfg.Assistant.BaseURL = v },
		extract: func(cfg Config) string { return cfg.Assistant.BaseURL },
	},
	{
		key: "assistant.model", env: "GRANTDESK_ASSISTANT_MODEL",
		apply:   func(cfg *Config, v string) { cfg.Assistant.Model = v },
		extract: func(cfg Config) string { return cfg.Assistant.Model },
	},
	{
		key: "assistant.api_key", env: "GRANTDESK_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v string) { cfg.Assistant.APIKey = v },
		extract: func(cfg Config) string { return cfg.Assistant.APIKey },
	},
	{
		key: "storage.data_dir", env: "GRANTDESK_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v string) { cfg.Storage.DataDir = v },
		extract: func(cfg Config) string { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", env: "GRANTDESK_LOG_LEVEL",
		apply:   func(cfg *Config, v string) { cfg.Log.Level = v },
		extract: func(cfg Config) string { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		v, ok, err := b.GetString(s.key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.key, err)
		}
		if ok && v != "" {
			s.apply(cfg, v)
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		if raw := os.Getenv(s.env); raw != "" {
			s.apply(cfg, raw)
		}
	}
}
