package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://api.journale.ai", cfg.Server.APIBaseURL)
	assert.Equal(t, "/session/create", cfg.Server.SessionCreatePath)
	assert.Equal(t, "/chat/player", cfg.Server.ChatPath)
	assert.Equal(t, "guest", cfg.Auth.Mode)
	assert.Equal(t, 16, cfg.Client.MaxHistoryLinesForContext)
	assert.Equal(t, 2, cfg.Client.MaxRetriesOn429)
	assert.InDelta(t, 0.6, cfg.Client.BaseBackoffSeconds, 1e-9)
	assert.Equal(t, "sqlite", cfg.Storage.Store)
}

func TestLoad_ParsesFileValues(t *testing.T) {
	path := writeConfig(t, `
server:
  apiBaseUrl: https://dev.example.com
  projectId: proj-42
auth:
  mode: platform
  allowFallbackIfPlatformMissing: true
client:
  maxRetriesOn429: 5
  baseBackoffSeconds: 1.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://dev.example.com", cfg.Server.APIBaseURL)
	assert.Equal(t, "proj-42", cfg.Server.ProjectID)
	assert.Equal(t, "platform", cfg.Auth.Mode)
	assert.True(t, cfg.Auth.AllowFallbackIfPlatformMissing)
	assert.Equal(t, 5, cfg.Client.MaxRetriesOn429)
	assert.InDelta(t, 1.5, cfg.Client.BaseBackoffSeconds, 1e-9)
	// Unset fields still get defaults.
	assert.Equal(t, "/chat/player", cfg.Server.ChatPath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JOURNALE_API_BASE_URL", "https://env.example.com")
	t.Setenv("JOURNALE_AUTH_MODE", "PLATFORM")
	t.Setenv("JOURNALE_MAX_RETRIES", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Server.APIBaseURL)
	assert.Equal(t, "platform", cfg.Auth.Mode)
	assert.Equal(t, 7, cfg.Client.MaxRetriesOn429)
}

func TestLoad_ExpandsEnvVarsInSensitiveFields(t *testing.T) {
	t.Setenv("MY_PROJECT", "proj-env")
	path := writeConfig(t, `
server:
  projectId: ${MY_PROJECT}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "proj-env", cfg.Server.ProjectID)
}

func TestExpandEnvVars_UnsetLeftUnchanged(t *testing.T) {
	assert.Equal(t, "${DEFINITELY_NOT_SET_XYZ}", expandEnvVars("${DEFINITELY_NOT_SET_XYZ}"))
}

func TestValidate_CleanConfig(t *testing.T) {
	cfg := Defaults()
	assert.Nil(t, Validate(&cfg))
}

func TestValidate_BadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Server.APIBaseURL = "not a url"
	cfg.Server.ChatPath = "chat/player"
	cfg.Auth.Mode = "steam"
	cfg.Client.MaxRetriesOn429 = -1
	cfg.Logging.Level = "loud"
	cfg.Storage.Store = "postgres"

	issues := Validate(&cfg)
	paths := make([]string, 0, len(issues))
	for _, i := range issues {
		paths = append(paths, i.Path)
	}
	assert.Contains(t, paths, "server.apiBaseUrl")
	assert.Contains(t, paths, "server.chatPath")
	assert.Contains(t, paths, "auth.mode")
	assert.Contains(t, paths, "client.maxRetriesOn429")
	assert.Contains(t, paths, "logging.level")
	assert.Contains(t, paths, "storage.store")
}

func TestValidate_EmptyBaseURL(t *testing.T) {
	cfg := Defaults()
	cfg.Server.APIBaseURL = ""
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "server.apiBaseUrl", issues[0].Path)
}
