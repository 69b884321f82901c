package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Server validation
	if cfg.Server.APIBaseURL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.apiBaseUrl",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.Server.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.apiBaseUrl",
			Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.Server.APIBaseURL),
		})
	}
	for _, p := range []struct{ path, val string }{
		{"server.sessionCreatePath", cfg.Server.SessionCreatePath},
		{"server.chatPath", cfg.Server.ChatPath},
	} {
		if p.val != "" && !strings.HasPrefix(p.val, "/") {
			issues = append(issues, ValidationIssue{
				Path:    p.path,
				Message: fmt.Sprintf("must start with /, got %q", p.val),
			})
		}
	}

	// Auth validation
	validAuthModes := []string{"guest", "platform"}
	if cfg.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Auth.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "auth.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validAuthModes, cfg.Auth.Mode),
		})
	}

	// Client validation
	if cfg.Client.MaxRetriesOn429 < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "client.maxRetriesOn429",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Client.MaxRetriesOn429),
		})
	}
	if cfg.Client.BaseBackoffSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "client.baseBackoffSeconds",
			Message: fmt.Sprintf("must be >= 0, got %v", cfg.Client.BaseBackoffSeconds),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	// Storage validation
	validStores := []string{"sqlite", "memory"}
	if cfg.Storage.Store != "" && !slices.Contains(validStores, cfg.Storage.Store) {
		issues = append(issues, ValidationIssue{
			Path:    "storage.store",
			Message: fmt.Sprintf("must be one of %v, got %q", validStores, cfg.Storage.Store),
		})
	}

	return issues
}
