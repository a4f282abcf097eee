package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfigPath, EnvBackendURL, EnvTimeout, EnvTokenSecret, EnvLogLevel, EnvLogFormat, EnvLogPath} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "stockdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  url: http://files.example:5000
  timeout: 45s
  token_secret: from-file
log:
  level: debug
  format: json
`), 0o644))
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvBackendURL, "https://env.example")
	t.Setenv(EnvLogPath, "/tmp/stockdesk.log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.Backend.URL)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "from-file", cfg.Backend.TokenSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/stockdesk.log", cfg.Log.Path)
}

func TestLoadDotEnvNamesConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "desk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  url: http://yaml.example:5000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvConfigPath+"="+path+"\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://yaml.example:5000", cfg.Backend.URL)
}

func TestLoadTimeoutForms(t *testing.T) {
	clearEnv(t)

	t.Setenv(EnvTimeout, "12")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, cfg.Backend.Timeout)

	t.Setenv(EnvTimeout, "1m30s")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Backend.Timeout)

	t.Setenv(EnvTimeout, "soon")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"url without scheme", EnvBackendURL, "localhost:5000"},
		{"ftp url", EnvBackendURL, "ftp://files"},
		{"zero timeout", EnvTimeout, "0"},
		{"huge timeout", EnvTimeout, "1h"},
		{"log level", EnvLogLevel, "verbose"},
		{"log format", EnvLogFormat, "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
