package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// metaKeys are kept in file logs but hidden from the console line.
var metaKeys = map[string]bool{
	"time":      true,
	"level":     true,
	"msg":       true,
	"intention": true,
	"component": true,
}

// plainHandler prints the message (prefixed by the intention icon) followed
// by key=value pairs, without time/level decorations.
type plainHandler struct {
	w       io.Writer
	attrs   []slog.Attr
	mu      *sync.Mutex
	leveler slog.Leveler
}

func newPlainHandler(w io.Writer, leveler slog.Leveler) slog.Handler {
	return &plainHandler{w: w, leveler: leveler, mu: &sync.Mutex{}}
}

func (h *plainHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	if h.leveler == nil {
		return true
	}
	return lvl >= h.leveler.Level()
}

func (h *plainHandler) Handle(_ context.Context, r slog.Record) error {
	var intention string
	var pairs []string

	visit := func(a slog.Attr) {
		if a.Key == "intention" {
			intention = a.Value.String()
		}
		if metaKeys[a.Key] {
			return
		}
		pairs = append(pairs, fmt.Sprintf("%s=%v", a.Key, a.Value))
	}
	walk := func(a slog.Attr) {
		if a.Value.Kind() == slog.KindGroup {
			for _, ga := range a.Value.Group() {
				visit(ga)
			}
			return
		}
		visit(a)
	}

	for _, a := range h.attrs {
		walk(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		walk(a)
		return true
	})

	var sb strings.Builder
	if intention != "" {
		sb.WriteString(iconFor(Intention(intention)))
		sb.WriteString(" ")
	}
	if r.Level >= slog.LevelWarn {
		sb.WriteString(r.Level.String())
		sb.WriteString(": ")
	}
	sb.WriteString(r.Message)
	for _, p := range pairs {
		sb.WriteString(" ")
		sb.WriteString(p)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, sb.String())
	return err
}

func (h *plainHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &nh
}

// WithGroup groups attributes; for plain output we encode as a group attr
func (h *plainHandler) WithGroup(name string) slog.Handler {
	nh := *h
	nh.attrs = append(append([]slog.Attr{}, h.attrs...), slog.Group(name))
	return &nh
}
