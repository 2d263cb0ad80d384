package fieldtrace

import "weak"

// ParentResolver returns the aggregate that holds a field. It is called on
// every traced access, never cached, so it always reports the parent's
// current identity. ok == false means "no parent".
//
// The field makes no ownership claim on the parent: whether the resolver
// keeps it alive is the caller's choice. Pointer parents should use
// WeakParent so a field stored inside its own parent does not pin it;
// value parents are naturally copied with StrongParent.
type ParentResolver[P any] func() (parent P, ok bool)

// StrongParent always returns p.
func StrongParent[P any](p P) ParentResolver[P] {
	return func() (P, bool) {
		return p, true
	}
}

// WeakParent returns p for as long as it is reachable elsewhere, without
// keeping it alive itself.
func WeakParent[T any](p *T) ParentResolver[*T] {
	if p == nil {
		return NoParent[*T]()
	}
	wp := weak.Make(p)
	return func() (*T, bool) {
		v := wp.Value()
		return v, v != nil
	}
}

// NoParent never reports a parent. Useful for package-level variables.
func NoParent[P any]() ParentResolver[P] {
	return func() (P, bool) {
		var zero P
		return zero, false
	}
}
