package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// FileConfig is the on-disk shape of the configuration. Durations use
// timex.Duration so they can be written as "15s" or integer nanoseconds.
// Absent or zero fields leave the current value alone.
type FileConfig struct {
	ServerBaseURL     string         `json:"server_base_url" yaml:"server_base_url"`
	RequestTimeout    timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DataDir           string         `json:"data_dir" yaml:"data_dir"`
	RequestsPerSecond float64        `json:"requests_per_second" yaml:"requests_per_second"`
	LogLevel          string         `json:"log_level" yaml:"log_level"`
	LogBackend        string         `json:"log_backend" yaml:"log_backend"`
	Demo              bool           `json:"demo" yaml:"demo"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON. Panics on read or
// decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.ServerBaseURL != "" {
		cfg.ServerBaseURL = fc.ServerBaseURL
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	if fc.RequestsPerSecond != 0 {
		cfg.RequestsPerSecond = fc.RequestsPerSecond
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogBackend != "" {
		cfg.LogBackend = fc.LogBackend
	}
	if fc.Demo {
		cfg.Demo = true
	}
}
