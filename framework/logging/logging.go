// Package logging builds the slog logger shared by the container, the HTTP
// inspector and the console commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Category groups related log messages.
type Category string

const (
	CatContainer Category = "container" // resolution and lint
	CatConfig    Category = "config"    // configuration and definitions loading
	CatHTTP      Category = "http"      // inspection API
	CatWatcher   Category = "watcher"   // definitions file watcher
	CatModules   Category = "modules"   // providers and module registry
)

// Options selects the handler New builds.
type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// New returns a logger writing to w.
//
//	logger, err := logging.New(os.Stderr, logging.Options{Level: "debug", Format: "json"})
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(opts.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}
}

// ParseLevel maps a level name to its slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: %w", err)
	}
	return level, nil
}

// For returns l with the category attached to every record.
func For(l *slog.Logger, cat Category) *slog.Logger {
	return l.With(slog.String("category", string(cat)))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
