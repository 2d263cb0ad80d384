package symbol

import (
	"regexp"
	"strings"
)

// Utilities for splitting Go function names.

// anonymousFuncRE recognizes closures and init blocks declared inside a
// plain function, which otherwise look like methods:
// github.com/.../pkg.myFunc.func1, internal/bytealg.init.0, pkg.F.gowrap1.
var anonymousFuncRE = regexp.MustCompile(`^\w+\.(func|gowrap)?\d+(\.|$)`)

// FuncName is a Go function name split into its parts.
type FuncName struct {
	// Package is the import path, e.g. github.com/coral-mesh/fieldtrace/pkg/fieldtrace.
	Package string
	// Receiver is the receiver type without the pointer marker, empty for
	// plain functions. Generic receivers keep their elided [...] suffix.
	Receiver string
	// Pointer is set for pointer receivers.
	Pointer bool
	// Name is the function or method name, including closure suffixes.
	Name string
}

// String reassembles the short form pkg.(*T).M using the last element of the
// import path.
func (f FuncName) String() string {
	pkg := f.Package
	if i := strings.LastIndexByte(pkg, '/'); i >= 0 {
		pkg = pkg[i+1:]
	}

	var b strings.Builder
	if pkg != "" {
		b.WriteString(pkg)
		b.WriteByte('.')
	}
	if f.Receiver != "" {
		if f.Pointer {
			b.WriteString("(*")
			b.WriteString(f.Receiver)
			b.WriteString(").")
		} else {
			b.WriteString(f.Receiver)
			b.WriteByte('.')
		}
	}
	b.WriteString(f.Name)
	return b.String()
}

// ParseFuncName splits a Go symbol name such as
// github.com/x/y/pkg.(*Field[...]).Get. Raw linker names with escapes and
// shape arguments are accepted. Names that do not look like Go symbols come
// back with only Name set, demangled when they use a foreign scheme.
func ParseFuncName(symbol string) FuncName {
	if _, ok := foreignMangled(symbol); ok {
		return FuncName{Name: Demangle(symbol)}
	}

	s, ok := elideTypeArgs(symbol)
	if !ok {
		s = symbol
	}

	// The package ends at the first dot after the last slash. Dots inside
	// the last path element are still escaped at this point.
	slash := strings.LastIndexByte(s, '/')
	dot := strings.IndexByte(s[slash+1:], '.')
	if dot < 0 {
		return FuncName{Name: s}
	}
	dot += slash + 1

	pkg, ok := unescapePath(s[:dot])
	if !ok {
		pkg = s[:dot]
	}
	fn := FuncName{Package: pkg}
	rest := s[dot+1:]

	switch {
	case strings.HasPrefix(rest, "("):
		end := strings.Index(rest, ").")
		if end < 0 {
			return FuncName{Name: s}
		}
		recv := rest[1:end]
		fn.Pointer = strings.HasPrefix(recv, "*")
		fn.Receiver = strings.TrimPrefix(recv, "*")
		fn.Name = rest[end+2:]

	case anonymousFuncRE.MatchString(rest):
		fn.Name = rest

	default:
		if i := strings.IndexByte(rest, '.'); i > 0 {
			fn.Receiver = rest[:i]
			fn.Name = rest[i+1:]
		} else {
			fn.Name = rest
		}
	}

	return fn
}
