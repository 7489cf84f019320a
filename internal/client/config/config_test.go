package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", c.ServerBaseURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.Equal(t, "gophchat-data", c.DataDir)
	assert.Equal(t, 10.0, c.RequestsPerSecond)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "slog", c.LogBackend)
	assert.False(t, c.Demo)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://localhost:8080", cfg.ServerBaseURL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTemp(t, "cfg.yaml", "server_base_url: http://file:1\nlog_level: debug\nrequest_timeout: 5s\n")
	os.Args = []string{"testbin", "-c", path, "-a", "http://flag:2"}

	cfg := LoadConfig()

	assert.Equal(t, "http://flag:2", cfg.ServerBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}
