package fieldtrace

import (
	"fmt"
	"reflect"

	"github.com/coral-mesh/fieldtrace/pkg/callstack"
)

// ErasedChanges is the type-erased form of Changes.
type ErasedChanges struct {
	Current any
	New     any
}

// ErasedAccessEvent is an AccessEvent with its value and parent types
// erased, so one observer can serve fields of different types.
type ErasedAccessEvent struct {
	Kind Kind

	// Value is the value returned by a read, nil for writes.
	Value any
	// Changes is set for writes only.
	Changes *ErasedChanges

	Stack         callstack.Trace
	CallSiteIndex int

	// Parent is nil when HasParent is false.
	Parent    any
	HasParent bool

	// Field is nil when no token was attached.
	Field AnyFieldToken

	// ParentType and ValueType are the static types of the traced field.
	ParentType reflect.Type
	ValueType  reflect.Type
}

// ErasedObserver receives type-erased events. self is nil when the field has
// no self token.
type ErasedObserver func(event ErasedAccessEvent, self AnySelfToken)

// Erase boxes the typed values of an event.
func Erase[P, V any](e AccessEvent[P, V]) ErasedAccessEvent {
	out := ErasedAccessEvent{
		Kind:          e.Kind,
		Stack:         e.Stack,
		CallSiteIndex: e.CallSiteIndex,
		HasParent:     e.HasParent,
		Field:         e.Field.erased(),
		ParentType:    reflect.TypeFor[P](),
		ValueType:     reflect.TypeFor[V](),
	}

	switch e.Kind {
	case KindRead:
		out.Value = e.Value
	case KindWrite:
		out.Changes = &ErasedChanges{Current: e.Changes.Current, New: e.Changes.New}
	}

	if e.HasParent {
		out.Parent = e.Parent
	}

	return out
}

// CallSite returns the frame of the code that performed the access.
func (e ErasedAccessEvent) CallSite() (callstack.Frame, bool) {
	return e.Stack.CallSite(e.CallSiteIndex)
}

// FieldName returns the token name, or "" when no token is attached.
func (e ErasedAccessEvent) FieldName() string {
	if e.Field == nil {
		return ""
	}
	return e.Field.Name()
}

// String describes the access using runtime types, e.g.
// "write(int): 12 => 5".
func (e ErasedAccessEvent) String() string {
	switch {
	case e.Kind == KindRead:
		return fmt.Sprintf("read(%s): %v", e.typeName(), e.Value)
	case e.Kind == KindWrite && e.Changes != nil:
		return fmt.Sprintf("write(%s): %v => %v", e.typeName(), e.Changes.Current, e.Changes.New)
	default:
		return e.Kind.String()
	}
}

func (e ErasedAccessEvent) typeName() string {
	if e.ValueType != nil {
		return e.ValueType.String()
	}
	switch {
	case e.Kind == KindRead:
		return fmt.Sprintf("%T", e.Value)
	case e.Changes != nil:
		return fmt.Sprintf("%T", e.Changes.New)
	default:
		return "<nil>"
	}
}
