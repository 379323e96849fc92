package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized records for a terminal.
//
// With [FormatText] each record is a single line of key=value pairs, with
// group members qualified by their dotted group path. With [FormatJSON] each
// record is an indented object with unquoted keys and values.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	groups []string
	attrs  []slog.Attr
	layout Format
}

func newPrettyHandler(
	w io.Writer,
	layout Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		w:      w,
		layout: layout,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.attrs = append(slices.Clip(h.attrs), nest(h.groups, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(slices.Clip(h.groups), name)

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	p := &painter{
		layout:  h.layout,
		level:   r.Level,
		replace: h.opts.ReplaceAttr,
		first:   true,
	}

	if h.layout == FormatJSON {
		p.buf.WriteByte('{')
	}

	if !r.Time.IsZero() {
		p.attr(0, nil, slog.Time(slog.TimeKey, r.Time))
	}

	p.attr(0, nil, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			p.attr(0, nil, slog.String(slog.SourceKey,
				fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	p.attr(0, nil, slog.String(slog.MessageKey, r.Message))

	for _, a := range h.attrs {
		p.attr(0, nil, a)
	}

	record := make([]slog.Attr, 0, r.NumAttrs())

	r.Attrs(func(a slog.Attr) bool {
		record = append(record, a)

		return true
	})

	for _, a := range nest(h.groups, record) {
		p.attr(0, nil, a)
	}

	if h.layout == FormatJSON {
		p.buf.WriteString("\n}")
	}

	p.buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(p.buf.Bytes())

	return err
}

// nest wraps attrs in the given groups, outermost first.
func nest(groups []string, attrs []slog.Attr) []slog.Attr {
	if len(attrs) == 0 {
		return nil
	}

	for i := len(groups) - 1; i >= 0; i-- {
		attrs = []slog.Attr{{Key: groups[i], Value: slog.GroupValue(attrs...)}}
	}

	return attrs
}

// painter renders the attributes of a single record.
type painter struct {
	buf     bytes.Buffer
	replace func([]string, slog.Attr) slog.Attr
	layout  Format
	level   slog.Level
	first   bool
}

func (p *painter) attr(depth int, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		p.group(depth, groups, a)

		return
	}

	if p.replace != nil {
		a = p.replace(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	p.key(depth, groups, a.Key)

	if a.Key == slog.LevelKey && len(groups) == 0 {
		p.paint(levelColor(p.level), a.Value.String())

		return
	}

	p.value(a.Value)
}

func (p *painter) group(depth int, groups []string, a slog.Attr) {
	members := a.Value.Group()
	if len(members) == 0 {
		return
	}

	// Groups with an empty key are inlined.
	if a.Key == "" {
		for _, m := range members {
			p.attr(depth, groups, m)
		}

		return
	}

	inner := append(slices.Clip(groups), a.Key)

	if p.layout != FormatJSON {
		for _, m := range members {
			p.attr(depth, inner, m)
		}

		return
	}

	p.key(depth, groups, a.Key)
	p.buf.WriteByte('{')
	p.first = true

	for _, m := range members {
		p.attr(depth+1, inner, m)
	}

	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat("  ", depth+1))
	p.buf.WriteByte('}')
	p.first = false
}

func (p *painter) key(depth int, groups []string, key string) {
	if p.layout == FormatJSON {
		if !p.first {
			p.buf.WriteByte(',')
		}

		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth+1))
		p.paint(colorGray, key)
		p.buf.WriteString(": ")
	} else {
		if !p.first {
			p.buf.WriteByte(' ')
		}

		if len(groups) > 0 {
			key = strings.Join(groups, ".") + "." + key
		}

		p.paint(colorGray, key)
		p.buf.WriteByte('=')
	}

	p.first = false
}

func (p *painter) value(v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		p.paint(colorCyan, v.String())

	case slog.KindInt64:
		p.paint(colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		p.paint(colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		p.paint(colorYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			p.paint(colorGreen, "true")
		} else {
			p.paint(colorRed, "false")
		}

	case slog.KindDuration:
		p.paint(colorMagenta, v.Duration().String())

	case slog.KindTime:
		p.paint(colorBlue, v.Time().Format(time.RFC3339))

	default:
		switch x := v.Any().(type) {
		case nil:
			p.paint(colorGray, "null")
		case error:
			p.paint(colorRed, x.Error())
		default:
			p.paint(colorCyan, fmt.Sprint(x))
		}
	}
}

func (p *painter) paint(color, s string) {
	p.buf.WriteString(color)
	p.buf.WriteString(s)
	p.buf.WriteString(colorReset)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	case level >= slog.LevelDebug:
		return colorBlue
	default:
		return colorMagenta
	}
}
