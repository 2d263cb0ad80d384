package fieldtrace

import (
	"fmt"

	"github.com/coral-mesh/fieldtrace/pkg/callstack"
)

// Kind represents the type of access.
type Kind uint8

const (
	KindRead Kind = iota + 1
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Changes carries both sides of a write.
type Changes[V any] struct {
	// Current is the value held before the write.
	Current V
	// New is the value being written.
	New V
}

// AccessEvent describes one access to a traced field. It is built fresh for
// every access and not retained after the observer returns.
type AccessEvent[P, V any] struct {
	Kind Kind

	// Value is the value returned by a read. Unset for writes.
	Value V
	// Changes holds the old and new value of a write. Unset for reads.
	Changes Changes[V]

	// Stack is the resolved call stack, innermost first.
	Stack callstack.Trace
	// CallSiteIndex is the index in Stack of the code that called the
	// field's accessor.
	CallSiteIndex int

	// Parent is the aggregate holding the field, when HasParent is set.
	Parent    P
	HasParent bool

	// Field identifies which field of Parent was accessed. Zero when no
	// token was attached.
	Field FieldToken[P, V]
}

// CallSite returns the frame of the code that performed the access.
func (e AccessEvent[P, V]) CallSite() (callstack.Frame, bool) {
	return e.Stack.CallSite(e.CallSiteIndex)
}

// String describes the access, e.g. "write(int): 12 => 5".
func (e AccessEvent[P, V]) String() string {
	switch e.Kind {
	case KindRead:
		return fmt.Sprintf("read(%T): %v", e.Value, e.Value)
	case KindWrite:
		return fmt.Sprintf("write(%T): %v => %v", e.Changes.New, e.Changes.Current, e.Changes.New)
	default:
		return e.Kind.String()
	}
}
