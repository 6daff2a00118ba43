// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var messageKey = zerolog.MessageFieldName

// SlogConfig configures the levels of a handler created by NewSlogHandler.
type SlogConfig struct {
	DefaultLevel slog.Level

	// ModuleLevels overrides DefaultLevel for loggers with a matching
	// "module" attribute.
	ModuleLevels map[string]slog.Level
}

// NewSlogHandler returns a [slog.Handler] that writes JSON records to w by
// way of zerolog. Use [ConsoleSlogWriter] to get human readable output.
func NewSlogHandler(cfg SlogConfig, w io.Writer) (slog.Handler, error) {
	lowest := cfg.DefaultLevel
	for _, l := range cfg.ModuleLevels {
		if l < lowest {
			lowest = l
		}
	}

	zl := zerolog.New(w).Level(zerologLevel(lowest))
	return &logHandler{
		handler:      handler{zl},
		config:       cfg,
		defaultLevel: cfg.DefaultLevel,
		lowestLevel:  lowest,
	}, nil
}

// ConsoleSlogWriter wraps w with a zerolog console writer.
func ConsoleSlogWriter(w io.Writer, useColor bool) io.Writer {
	return zerolog.ConsoleWriter{
		Out:         w,
		NoColor:     !useColor,
		TimeFormat:  time.RFC3339,
		FormatLevel: formatLevel(useColor),
	}
}

func formatLevel(useColor bool) zerolog.Formatter {
	colors := map[string]*color.Color{
		zerolog.LevelTraceValue: color.New(color.FgMagenta),
		zerolog.LevelDebugValue: color.New(color.FgBlue),
		zerolog.LevelInfoValue:  color.New(color.FgGreen),
		zerolog.LevelWarnValue:  color.New(color.FgYellow),
		zerolog.LevelErrorValue: color.New(color.FgRed),
	}
	return func(i interface{}) string {
		s, _ := i.(string)
		level := strings.ToUpper(s)
		c, ok := colors[s]
		if !useColor || !ok {
			return level
		}
		c.EnableColor()
		return c.Sprint(level)
	}
}

// handler writes records to zerolog.
type handler struct {
	zl zerolog.Logger
}

// logHandler filters records by level and module and carries the attributes
// and groups added by WithAttrs and WithGroup.
type logHandler struct {
	handler
	config       SlogConfig
	defaultLevel slog.Level
	lowestLevel  slog.Level
	attrs        []slog.Attr
	group        string
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.defaultLevel
}

func (h *logHandler) Handle(ctx context.Context, r slog.Record) error {
	e := h.zl.WithLevel(zerologLevel(r.Level))
	if !r.Time.IsZero() {
		e = e.Time(zerolog.TimestampFieldName, r.Time)
	}
	for _, a := range Attrs(ctx) {
		addAttr(e, "", a)
	}
	for _, a := range h.attrs {
		addAttr(e, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(e, h.group, a)
		return true
	})
	e.Msg(r.Message)
	return nil
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	g := *h
	g.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], prefixAttrs(h.group, attrs)...)
	for _, a := range attrs {
		if a.Key != "module" {
			continue
		}
		if l, ok := h.config.ModuleLevels[a.Value.String()]; ok {
			g.defaultLevel = l
		}
	}
	return &g
}

func (h *logHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	g := *h
	g.group = h.group + name + "."
	return &g
}

func prefixAttrs(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func addAttr(e *zerolog.Event, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	key := prefix + a.Key
	switch v.Kind() {
	case slog.KindGroup:
		for _, a := range v.Group() {
			addAttr(e, key+".", a)
		}
	case slog.KindString:
		e.Str(key, v.String())
	case slog.KindInt64:
		e.Int64(key, v.Int64())
	case slog.KindUint64:
		e.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		e.Float64(key, v.Float64())
	case slog.KindBool:
		e.Bool(key, v.Bool())
	case slog.KindDuration:
		e.Dur(key, v.Duration())
	case slog.KindTime:
		e.Time(key, v.Time())
	default:
		if err, ok := v.Any().(error); ok {
			e.AnErr(key, err)
		} else {
			e.Interface(key, v.Any())
		}
	}
}

func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l < slog.LevelDebug:
		return zerolog.TraceLevel
	case l < slog.LevelInfo:
		return zerolog.DebugLevel
	case l < slog.LevelWarn:
		return zerolog.InfoLevel
	case l < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func slogLevel(l zerolog.Level) slog.Level {
	switch l {
	case zerolog.TraceLevel:
		return slog.LevelDebug - 4
	case zerolog.DebugLevel:
		return slog.LevelDebug
	case zerolog.InfoLevel:
		return slog.LevelInfo
	case zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

type _contextKey struct{}

var contextKey _contextKey

// WithAttrs returns a context that carries attrs in addition to those
// already on ctx. Handlers created by NewSlogHandler add them to every
// record logged with the context.
func WithAttrs(ctx context.Context, attrs []slog.Attr) context.Context {
	old := Attrs(ctx)
	return context.WithValue(ctx, contextKey, append(old[:len(old):len(old)], attrs...))
}

// Attrs returns the attributes carried by ctx.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(contextKey).([]slog.Attr)
	return v
}

// With is WithAttrs for alternating keys and values, in the style of
// [slog.Logger.With].
func With(ctx context.Context, args ...any) context.Context {
	var attrs []slog.Attr
	for len(args) > 0 {
		switch v := args[0].(type) {
		case string:
			if len(args) == 1 {
				attrs, args = append(attrs, slog.Any("!BADKEY", v)), nil
			} else {
				attrs, args = append(attrs, slog.Any(v, args[1])), args[2:]
			}
		case slog.Attr:
			attrs, args = append(attrs, v), args[1:]
		default:
			attrs, args = append(attrs, slog.Any("!BADKEY", v)), args[1:]
		}
	}
	return WithAttrs(ctx, attrs)
}
