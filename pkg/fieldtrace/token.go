package fieldtrace

import (
	"fmt"
	"reflect"
)

// FieldToken identifies "the V-typed field of P" without naming it by string
// at the use site. Tokens are comparable with ==; two tokens are equal only
// if they come from the same NewFieldToken call. The zero value means "no
// token".
type FieldToken[P, V any] struct {
	d *fieldDesc[P, V]
}

type fieldDesc[P, V any] struct {
	name string
	get  func(P) V
}

// NewFieldToken creates a token for a field. name is for display only; get
// reads the field from a parent, like applying a key path, and may be nil.
// Declare tokens once per field, typically as package variables.
func NewFieldToken[P, V any](name string, get func(P) V) FieldToken[P, V] {
	return FieldToken[P, V]{d: &fieldDesc[P, V]{name: name, get: get}}
}

// IsZero reports whether the token is absent.
func (t FieldToken[P, V]) IsZero() bool {
	return t.d == nil
}

// Name returns the display name, or "" for the zero token.
func (t FieldToken[P, V]) Name() string {
	if t.d == nil {
		return ""
	}
	return t.d.name
}

// Get reads the field from parent. It returns the zero value when the token
// has no getter.
func (t FieldToken[P, V]) Get(parent P) V {
	if t.d == nil || t.d.get == nil {
		var zero V
		return zero
	}
	return t.d.get(parent)
}

// ParentType returns the reflect type of P.
func (t FieldToken[P, V]) ParentType() reflect.Type {
	return reflect.TypeFor[P]()
}

// ValueType returns the reflect type of V.
func (t FieldToken[P, V]) ValueType() reflect.Type {
	return reflect.TypeFor[V]()
}

// ValueOf is the type-erased form of Get.
func (t FieldToken[P, V]) ValueOf(parent any) (any, bool) {
	p, ok := parent.(P)
	if !ok || t.d == nil || t.d.get == nil {
		return nil, false
	}
	return t.d.get(p), true
}

func (t FieldToken[P, V]) String() string {
	return fmt.Sprintf("%s.%s", t.ParentType(), t.Name())
}

// erased returns the token as an AnyFieldToken, or nil when absent.
func (t FieldToken[P, V]) erased() AnyFieldToken {
	if t.d == nil {
		return nil
	}
	return t
}

// AnyFieldToken is the type-erased view of a FieldToken.
type AnyFieldToken interface {
	Name() string
	ParentType() reflect.Type
	ValueType() reflect.Type
	ValueOf(parent any) (any, bool)
}

// Controller switches tracing of a field on and off without knowing its
// types. *Field implements it.
type Controller interface {
	Enable()
	Disable()
	Enabled() bool
}

// SelfToken identifies a field container itself, so an observer can reach
// the container from the parent, for example to disable it.
type SelfToken[P, V any] struct {
	d *selfDesc[P, V]
}

type selfDesc[P, V any] struct {
	name  string
	field func(P) *Field[P, V]
}

// NewSelfToken creates a token that finds the container of a field on a
// parent.
func NewSelfToken[P, V any](name string, field func(P) *Field[P, V]) SelfToken[P, V] {
	return SelfToken[P, V]{d: &selfDesc[P, V]{name: name, field: field}}
}

// IsZero reports whether the token is absent.
func (t SelfToken[P, V]) IsZero() bool {
	return t.d == nil
}

// Name returns the display name, or "" for the zero token.
func (t SelfToken[P, V]) Name() string {
	if t.d == nil {
		return ""
	}
	return t.d.name
}

// Field returns the container on parent, or nil.
func (t SelfToken[P, V]) Field(parent P) *Field[P, V] {
	if t.d == nil || t.d.field == nil {
		return nil
	}
	return t.d.field(parent)
}

// Controller is the type-erased form of Field.
func (t SelfToken[P, V]) Controller(parent any) (Controller, bool) {
	p, ok := parent.(P)
	if !ok {
		return nil, false
	}
	f := t.Field(p)
	if f == nil {
		return nil, false
	}
	return f, true
}

func (t SelfToken[P, V]) erased() AnySelfToken {
	if t.d == nil {
		return nil
	}
	return t
}

// AnySelfToken is the type-erased view of a SelfToken.
type AnySelfToken interface {
	Name() string
	Controller(parent any) (Controller, bool)
}
