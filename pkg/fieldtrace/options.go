package fieldtrace

import (
	"fmt"

	"github.com/coral-mesh/fieldtrace/pkg/callstack"
)

// Option configures a Field at construction. Options that carry typed values
// (observers, parents, tokens) must match the field's P and V; a mismatch is
// a programming error and makes New panic.
type Option func(*config)

type config struct {
	observer    any
	parent      any
	token       any
	self        any
	capturer    *callstack.Capturer
	unwind      callstack.Unwinder
	callSite    int
	hasCallSite bool
	maxDepth    int
	disabled    bool
}

// WithObserver sets a typed observer.
func WithObserver[P, V any](obs Observer[P, V]) Option {
	return func(c *config) {
		c.observer = obs
	}
}

// WithErasedObserver sets an observer that receives type-erased events.
func WithErasedObserver(obs ErasedObserver) Option {
	return func(c *config) {
		c.observer = obs
	}
}

// WithParent sets the parent resolver.
func WithParent[P any](r ParentResolver[P]) Option {
	return func(c *config) {
		c.parent = r
	}
}

// WithFieldToken attaches the token identifying the field within its parent.
func WithFieldToken[P, V any](t FieldToken[P, V]) Option {
	return func(c *config) {
		c.token = t
	}
}

// WithSelfToken attaches the token that finds the container on its parent.
func WithSelfToken[P, V any](t SelfToken[P, V]) Option {
	return func(c *config) {
		c.self = t
	}
}

// WithCapturer overrides the stack capturer. The default is
// callstack.Default().
func WithCapturer(c *callstack.Capturer) Option {
	return func(cfg *config) {
		cfg.capturer = c
	}
}

// WithUnwinder overrides how raw return addresses are collected.
func WithUnwinder(u callstack.Unwinder) Option {
	return func(c *config) {
		c.unwind = u
	}
}

// WithCallSiteIndex changes which frame is reported as the call site. Use it
// when accessors are nested deeper than one level around Get and Set.
func WithCallSiteIndex(i int) Option {
	return func(c *config) {
		c.callSite = i
		c.hasCallSite = true
	}
}

// WithMaxDepth bounds the number of frames captured per access.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// Untraced creates the field with tracing disabled.
func Untraced() Option {
	return func(c *config) {
		c.disabled = true
	}
}

func (f *Field[P, V]) applyConfig(c *config) {
	switch obs := c.observer.(type) {
	case nil:
	case Observer[P, V]:
		f.SetObserver(obs)
	case ErasedObserver:
		f.SetErasedObserver(obs)
	default:
		panic(mismatch("observer", obs, f))
	}

	switch r := c.parent.(type) {
	case nil:
	case ParentResolver[P]:
		f.parent = r
	default:
		panic(mismatch("parent resolver", r, f))
	}

	switch t := c.token.(type) {
	case nil:
	case FieldToken[P, V]:
		f.token = t
	default:
		panic(mismatch("field token", t, f))
	}

	switch t := c.self.(type) {
	case nil:
	case SelfToken[P, V]:
		f.self = t
	default:
		panic(mismatch("self token", t, f))
	}

	f.capturer = c.capturer
	f.unwind = c.unwind
	f.callSite = c.callSite
	f.hasCallSite = c.hasCallSite
	f.maxDepth = c.maxDepth
	f.disabled = c.disabled
}

func mismatch(what string, got, field any) string {
	return fmt.Sprintf("fieldtrace: %s of type %T does not match %T", what, got, field)
}
