package pfor

import (
	"log"

	"github.com/nickng/amdahl/resolve"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogOptions configures the analysis log of an Analyser.
type LogOptions struct {
	Development bool     // Human readable output with stack traces on warnings.
	Level       string   // Minimum level, e.g. "debug". Empty keeps the mode default.
	Files       []string // Extra output paths. "stderr" and "stdout" are understood.
}

// ParseLevel checks a log level name. The empty name is accepted.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return lvl, errors.Wrapf(err, "bad log level %q", level)
	}
	return lvl, nil
}

// buildLogger returns the logger of the pfor module described by opts.
func buildLogger(opts LogOptions) (*resolve.Logger, error) {
	cfg := zapConfig(opts.Development)
	if opts.Level != "" {
		lvl, err := ParseLevel(opts.Level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	cfg.OutputPaths = appendPaths(cfg.OutputPaths, opts.Files...)
	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "cannot create logger")
	}
	return resolve.NewLogger(l.Sugar(), "pfor"), nil
}

// newLogger returns a new logger with default options.
func newLogger() *resolve.Logger {
	l, err := buildLogger(LogOptions{})
	if err != nil {
		log.Fatal("Cannot create new logger:", err)
	}
	return l
}

func appendPaths(paths []string, extra ...string) []string {
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		seen[p] = true
	}
	for _, p := range extra {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}
