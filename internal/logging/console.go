package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	2026-03-01 12:00:00 INFO  [transfer run=0190a1b2 batch=2] batch copy started dir=/dest/2 files=50
//
// The component, run id and batch number move into the bracketed header; every
// other attribute follows the message as key=value.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Level
	addSource bool
	prefix    string
	attrs     []slog.Attr
}

func newConsoleHandler(w io.Writer, level slog.Level, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var (
		component, runID, batch string
		fields                  bytes.Buffer
	)
	add := func(a slog.Attr) {
		a.Value = a.Value.Resolve()
		switch a.Key {
		case "":
			return
		case FieldComponent:
			component = a.Value.String()
		case FieldRunID:
			runID = a.Value.String()
		case FieldBatch:
			batch = a.Value.String()
		default:
			fields.WriteByte(' ')
			fields.WriteString(a.Key)
			fields.WriteByte('=')
			fields.WriteString(formatValue(a.Value))
		}
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.prefix + a.Key
		add(a)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var line bytes.Buffer
	line.WriteString(ts.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&line, " %-5s ", r.Level.String())
	if header := consoleHeader(component, runID, batch); header != "" {
		line.WriteString(header)
		line.WriteByte(' ')
	}
	line.WriteString(r.Message)
	if h.addSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	line.Write(fields.Bytes())
	line.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line.Bytes())
	return err
}

func consoleHeader(component, runID, batch string) string {
	var parts []string
	if component != "" {
		parts = append(parts, component)
	}
	if runID != "" {
		if len(runID) > 8 {
			runID = runID[:8]
		}
		parts = append(parts, "run="+runID)
	}
	if batch != "" {
		parts = append(parts, "batch="+batch)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, a.Key+"="+formatValue(a.Value.Resolve()))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
