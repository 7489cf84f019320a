package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

var knownFlags = []string{"-a", "-t", "-d", "-r", "-l", "-b", "-demo"}

// parseFlags populates Config fields from command-line flags.
//
//	-a string   backend base URL
//	-t int      request timeout (seconds)
//	-d string   local data directory
//	-r float    outbound requests per second (0 = unlimited)
//	-l string   log level
//	-b string   log backend: slog or zap
//	-demo       use built-in demo conversations
//
// Only the flags listed above are picked out of os.Args (see flagx.FilterArgs).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "backend base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "local data directory")
	fs.Float64Var(&cfg.RequestsPerSecond, "r", cfg.RequestsPerSecond, "outbound requests per second, 0 disables the limit")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogBackend, "b", cfg.LogBackend, "log backend (slog, zap)")
	fs.BoolVar(&cfg.Demo, "demo", cfg.Demo, "use demo conversations instead of the backend")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
