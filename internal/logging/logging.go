// Package logging configures structured slog loggers for millwork.
//
// Logs are JSON on stderr and carry module and version attributes. Debug
// logs also carry their source location. The level comes from the caller
// or, failing that, the LOG_LEVEL environment variable.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/roach88/millwork/internal/config"
)

// LevelEnv overrides the level when none is given explicitly.
const LevelEnv = "LOG_LEVEL"

// New returns a JSON logger writing to w at the named level. An empty level
// falls back to LOG_LEVEL, then info. Unknown names mean info.
func New(w io.Writer, module, version, level string) *slog.Logger {
	if level == "" {
		level = os.Getenv(LevelEnv)
	}
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	})
	return slog.New(h).With("module", module, "version", version)
}

// SetDefault installs a stderr logger as the slog default and returns it.
func SetDefault(module, version, level string) *slog.Logger {
	l := New(os.Stderr, module, version, level)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
