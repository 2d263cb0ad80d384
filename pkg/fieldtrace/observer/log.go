package observer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// LogOption configures the logging observer.
type LogOption func(*logObserver)

// WithDemangleStyle selects how caller names are rendered.
func WithDemangleStyle(style symbol.Style) LogOption {
	return func(l *logObserver) {
		l.style = style
	}
}

// WithStack adds the full resolved stack to every line.
func WithStack() LogOption {
	return func(l *logObserver) {
		l.stack = true
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) LogOption {
	return func(l *logObserver) {
		l.session = id
	}
}

type logObserver struct {
	logger  zerolog.Logger
	session string
	style   symbol.Style
	stack   bool
}

// NewLogger returns an observer that writes one structured line per access.
// Reads are logged at debug level and writes at info level. All lines from
// one observer share a session id, so interleaved runs can be told apart.
func NewLogger(logger zerolog.Logger, opts ...LogOption) fieldtrace.ErasedObserver {
	l := &logObserver{
		session: uuid.New().String(),
		style:   symbol.StyleShort,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logger.With().
		Str("component", "fieldtrace").
		Str("session", l.session).
		Logger()

	return l.observe
}

func (l *logObserver) observe(e fieldtrace.ErasedAccessEvent, _ fieldtrace.AnySelfToken) {
	var ev *zerolog.Event
	var msg string
	switch e.Kind {
	case fieldtrace.KindRead:
		ev, msg = l.logger.Debug(), "Field read"
	case fieldtrace.KindWrite:
		ev, msg = l.logger.Info(), "Field written"
	default:
		return
	}
	if !ev.Enabled() {
		return
	}

	ev = ev.Str("kind", e.Kind.String())
	if name := e.FieldName(); name != "" {
		ev = ev.Str("field", name)
	}
	if e.ValueType != nil {
		ev = ev.Str("type", e.ValueType.String())
	}

	if e.Changes != nil {
		ev = ev.Interface("old", e.Changes.Current).Interface("new", e.Changes.New)
	} else {
		ev = ev.Interface("value", e.Value)
	}

	if e.HasParent && e.ParentType != nil {
		ev = ev.Str("parent_type", e.ParentType.String())
	}

	if site, ok := e.CallSite(); ok {
		ev = ev.Str("caller", symbol.DemangleWith(site.SymbolName, l.style))
		if site.File != "" {
			ev = ev.Str("source", fmt.Sprintf("%s:%d", site.File, site.Line))
		}
		if site.ModulePath != "" {
			ev = ev.Str("module", site.ModulePath)
		}
	}

	ev = ev.Int("depth", len(e.Stack)).
		Str("stack_hash", fmt.Sprintf("%016x", e.Stack.Hash()))

	if l.stack {
		frames := make([]string, len(e.Stack))
		for i, f := range e.Stack {
			frames[i] = f.String()
		}
		ev = ev.Strs("stack", frames)
	}

	ev.Msg(msg)
}
