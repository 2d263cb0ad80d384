package fieldtrace

import (
	"github.com/coral-mesh/fieldtrace/pkg/callstack"
)

// CallSiteIndex is the default index of the call-site frame in an event's
// stack: 0 is Get or Set, 1 the accessor that forwards to it, 2 its caller.
const CallSiteIndex = 2

// Observer receives typed access events. It runs synchronously on the
// accessing goroutine, before a read returns or a write is committed. A
// panic in the observer propagates to the accessor's caller.
//
// Observers that touch the traced field must use GetUntraced or SetUntraced,
// otherwise they recurse.
type Observer[P, V any] func(event AccessEvent[P, V], self SelfToken[P, V])

// Field holds a traced value of type V belonging to a parent of type P.
// The zero value holds the zero V, is enabled and has no observer.
type Field[P, V any] struct {
	value    V
	disabled bool

	parent   ParentResolver[P]
	token    FieldToken[P, V]
	self     SelfToken[P, V]
	observer Observer[P, V]

	capturer    *callstack.Capturer
	unwind      callstack.Unwinder
	callSite    int
	hasCallSite bool
	maxDepth    int
}

// New creates a field holding initial. P usually has to be given explicitly,
// V is inferred: New[*Account](12).
func New[P, V any](initial V, opts ...Option) *Field[P, V] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	f := &Field[P, V]{value: initial}
	f.applyConfig(&cfg)
	return f
}

// Get returns the value, reporting a read when tracing is enabled.
//
//go:noinline
func (f *Field[P, V]) Get() V {
	v := f.value
	if !f.disabled {
		f.dispatch(KindRead, v, v, callstack.Callers(f.unwind, 0, f.maxDepth))
	}
	return v
}

// Set stores v, reporting the write first when tracing is enabled. The
// observer sees the value being replaced in Changes.Current.
//
//go:noinline
func (f *Field[P, V]) Set(v V) {
	if !f.disabled {
		f.dispatch(KindWrite, f.value, v, callstack.Callers(f.unwind, 0, f.maxDepth))
	}
	f.value = v
}

// GetUntraced returns the value without reporting, whatever the tracing
// state. The state is unchanged afterwards.
func (f *Field[P, V]) GetUntraced() V {
	return f.value
}

// SetUntraced stores v without reporting.
func (f *Field[P, V]) SetUntraced(v V) {
	f.value = v
}

// Enable turns tracing on. Enabling an enabled field does nothing.
func (f *Field[P, V]) Enable() {
	f.disabled = false
}

// Disable turns tracing off. Values are still stored and returned.
func (f *Field[P, V]) Disable() {
	f.disabled = true
}

// Enabled reports whether accesses are currently reported.
func (f *Field[P, V]) Enabled() bool {
	return !f.disabled
}

// SetParentResolver replaces the parent resolver. nil removes it.
func (f *Field[P, V]) SetParentResolver(r ParentResolver[P]) {
	f.parent = r
}

// SetParent holds p strongly. For pointer parents that contain the field,
// prefer SetParentResolver(WeakParent(p)).
func (f *Field[P, V]) SetParent(p P) {
	f.parent = StrongParent(p)
}

// SetFieldToken attaches the token identifying the field within its parent.
func (f *Field[P, V]) SetFieldToken(t FieldToken[P, V]) {
	f.token = t
}

// SetSelfToken attaches the token that finds this container on its parent.
func (f *Field[P, V]) SetSelfToken(t SelfToken[P, V]) {
	f.self = t
}

// SetObserver replaces the observer. nil removes it.
func (f *Field[P, V]) SetObserver(obs Observer[P, V]) {
	f.observer = obs
}

// SetErasedObserver replaces the observer with one receiving erased events.
// nil removes it.
func (f *Field[P, V]) SetErasedObserver(obs ErasedObserver) {
	if obs == nil {
		f.observer = nil
		return
	}
	f.observer = eraseObserver[P, V](obs)
}

func eraseObserver[P, V any](obs ErasedObserver) Observer[P, V] {
	return func(e AccessEvent[P, V], self SelfToken[P, V]) {
		obs(Erase(e), self.erased())
	}
}

func (f *Field[P, V]) callSiteIndex() int {
	if f.hasCallSite {
		return f.callSite
	}
	return CallSiteIndex
}

// dispatch builds and delivers one event. pcs[0] must be inside Get or Set.
func (f *Field[P, V]) dispatch(kind Kind, current, next V, pcs []uintptr) {
	capturer := f.capturer
	if capturer == nil {
		capturer = callstack.Default()
	}
	stack := capturer.Capture(pcs)

	idx := f.callSiteIndex()
	if idx < 0 || len(stack) <= idx {
		// Not deep enough to name a call site.
		return
	}
	if f.observer == nil {
		return
	}

	event := AccessEvent[P, V]{
		Kind:          kind,
		Stack:         stack,
		CallSiteIndex: idx,
		Field:         f.token,
	}
	if kind == KindRead {
		event.Value = current
	} else {
		event.Changes = Changes[V]{Current: current, New: next}
	}
	if f.parent != nil {
		event.Parent, event.HasParent = f.parent()
	}

	f.observer(event, f.self)
}
