package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd", "-a", "http://api:9090", "-t", "3", "-d", "/tmp/chat", "-r", "2.5", "-l", "debug", "-b", "zap", "-demo"},
			expected: &Config{ServerBaseURL: "http://api:9090", RequestTimeout: 3 * time.Second, DataDir: "/tmp/chat", RequestsPerSecond: 2.5, LogLevel: "debug", LogBackend: "zap", Demo: true}},
		{name: "foreign flags ignored", args: []string{"cmd", "-x", "1", "-a", "http://api:1"},
			expected: &Config{ServerBaseURL: "http://api:1"}},
		{name: "incorrect timeout", args: []string{"cmd", "-t", "abc"}, expectPanic: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
