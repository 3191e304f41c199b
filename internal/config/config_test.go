// file: internal/config/config_test.go
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DisableDefaultTransportExactMatchOnly(t *testing.T) {
	cases := map[string]bool{
		"true":   true,
		"":       false,
		"1":      false,
		"yes":    false,
		"TRUE":   false,
		" true ": false,
	}
	for raw, want := range cases {
		t.Setenv(noDefaultTransportEnv, raw)
		got := Load()
		assert.Equalf(t, want, got.DisableDefaultTransport, "raw=%q", raw)
	}
}

func TestLoad_DefaultsOneStdioTransport(t *testing.T) {
	t.Setenv(noDefaultTransportEnv, "")
	t.Setenv(logLevelEnv, "")
	cfg := Load()
	assert.Len(t, cfg.Transports, 1)
	assert.Equal(t, "stdio", cfg.Transports[0].Kind)
}

func TestLoad_ConfigFileSetsTransportsAndLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transports:\n  - kind: stdio\n  - kind: fake\nlogLevel: debug\n"), 0o644))

	t.Setenv(configFileEnv, path)
	t.Setenv(noDefaultTransportEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg := Load()
	require.Len(t, cfg.Transports, 2)
	assert.Equal(t, "fake", cfg.Transports[1].Kind)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_EnvLogLevelOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o644))

	t.Setenv(configFileEnv, path)
	t.Setenv(logLevelEnv, "error")

	cfg := Load()
	assert.Equal(t, slog.LevelError, cfg.LogLevel)
}
