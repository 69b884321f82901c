package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in fields
// that commonly hold per-install values, so they can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Server.ProjectID = expandEnvVars(cfg.Server.ProjectID)
	cfg.Auth.DeviceIDOverride = expandEnvVars(cfg.Auth.DeviceIDOverride)
}

// Load reads the config file, applies environment overrides, and returns a
// merged Config. A missing file produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields with stock defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.APIBaseURL == "" {
		cfg.Server.APIBaseURL = "https://api.journale.ai"
	}
	if cfg.Server.SessionCreatePath == "" {
		cfg.Server.SessionCreatePath = "/session/create"
	}
	if cfg.Server.ChatPath == "" {
		cfg.Server.ChatPath = "/chat/player"
	}
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = "guest"
	}
	if cfg.Client.MaxHistoryLinesForContext == 0 {
		cfg.Client.MaxHistoryLinesForContext = 16
	}
	if cfg.Client.MaxRetriesOn429 == 0 {
		cfg.Client.MaxRetriesOn429 = 2
	}
	if cfg.Client.BaseBackoffSeconds == 0 {
		cfg.Client.BaseBackoffSeconds = 0.6
	}
	if cfg.Player.DefaultDescription == "" {
		cfg.Player.DefaultDescription = "A curious player testing NPC chat."
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Storage.Store == "" {
		cfg.Storage.Store = "sqlite"
	}
}

// applyEnvOverrides reads JOURNALE_* environment variables and overrides
// config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNALE_API_BASE_URL"); v != "" {
		cfg.Server.APIBaseURL = v
	}
	if v := os.Getenv("JOURNALE_PROJECT_ID"); v != "" {
		cfg.Server.ProjectID = v
	}
	if v := os.Getenv("JOURNALE_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("JOURNALE_DEVICE_ID"); v != "" {
		cfg.Auth.DeviceIDOverride = v
	}
	if v := os.Getenv("JOURNALE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("JOURNALE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Client.MaxRetriesOn429 = n
		}
	}
}
