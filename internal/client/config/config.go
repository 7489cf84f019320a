package config

import "time"

// Config holds runtime settings for the gophchat client.
type Config struct {
	ServerBaseURL     string
	RequestTimeout    time.Duration
	DataDir           string
	RequestsPerSecond float64
	LogLevel          string
	LogBackend        string
	Demo              bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080"
	c.RequestTimeout = 15 * time.Second
	c.DataDir = "gophchat-data"
	c.RequestsPerSecond = 10
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.Demo = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if given) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
