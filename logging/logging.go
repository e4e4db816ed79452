// Package logging builds the slog loggers used across the simulation.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/pthm-cable/swarm/config"
)

// Log tags attached to records as the "tag" attribute.
const (
	TagMain      = "main"
	TagComm      = "comm"
	TagSatellite = "satellite"
	TagRobot     = "robot"
	TagWorld     = "world"
)

// ParseLevel maps a config level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w using the configured format and level.
func New(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Tagged returns l with the given tag attribute. A nil logger falls back to slog.Default().
func Tagged(l *slog.Logger, tag string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("tag", tag)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// Entry is a captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder is an in-memory slog.Handler that keeps every record at or above Level.
// Handlers derived via WithAttrs share the same entry store.
type Recorder struct {
	Level slog.Level

	store *recorderStore
	attrs []slog.Attr
	group string
}

type recorderStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates a recorder capturing debug and above.
func NewRecorder() *Recorder {
	return &Recorder{Level: slog.LevelDebug, store: &recorderStore{}}
}

// Logger returns a logger backed by the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.Level
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	e := Entry{Level: rec.Level, Message: rec.Message, Attrs: make(map[string]any)}
	// Bound attrs already carry the group that was open when they were added.
	for _, a := range r.attrs {
		e.Attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		e.Attrs[r.key(a.Key)] = a.Value.Any()
		return true
	})

	r.store.mu.Lock()
	r.store.entries = append(r.store.entries, e)
	r.store.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *r
	next.attrs = append([]slog.Attr(nil), r.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: r.key(a.Key), Value: a.Value})
	}
	return &next
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	next := *r
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

func (r *Recorder) key(k string) string {
	if r.group == "" {
		return k
	}
	return r.group + "." + k
}

// Entries returns a copy of every captured record.
func (r *Recorder) Entries() []Entry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]Entry, len(r.store.entries))
	copy(out, r.store.entries)
	return out
}

// Count returns the number of captured records with the given message.
func (r *Recorder) Count(msg string) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Message == msg {
			n++
		}
	}
	return n
}

// Len returns the number of captured records.
func (r *Recorder) Len() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.entries)
}

// Reset discards captured records.
func (r *Recorder) Reset() {
	r.store.mu.Lock()
	r.store.entries = nil
	r.store.mu.Unlock()
}
