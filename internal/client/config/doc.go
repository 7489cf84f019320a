// Package config loads runtime configuration for the gophchat client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. A .yaml/.yml file is
//     read as YAML, anything else as JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-d string   local data directory
//	-r float    outbound requests per second
//	-l string   log level
//	-b string   log backend (slog, zap)
//	-demo       demo conversations instead of the backend
//
// # File schema
//
//	{
//	  "server_base_url": "http://localhost:8080",
//	  "request_timeout": "15s",
//	  "data_dir": "gophchat-data",
//	  "requests_per_second": 10,
//	  "log_level": "info",
//	  "log_backend": "slog",
//	  "demo": false
//	}
//
// The package does not read environment variables.
package config
