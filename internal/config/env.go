package config

import (
	"os"
	"strings"
)

// ExpandEnv replaces ${VAR} and ${VAR:-default} in s. Unset variables without a default
// expand to the empty string.
func ExpandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if key, def, ok := strings.Cut(name, ":-"); ok {
			if v, set := os.LookupEnv(key); set && v != "" {
				return v
			}
			return def
		}
		return os.Getenv(name)
	})
}

// ApplyEnv overrides credentials from the environment. OPENAI_API_KEY fills both the
// completion and embedding keys when they are empty; COURS_STORAGE_DRIVER overrides the
// storage driver.
func ApplyEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if cfg.Completion.APIKey == "" {
			cfg.Completion.APIKey = key
		}
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = key
		}
	}
	if driver := os.Getenv("COURS_STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
}
