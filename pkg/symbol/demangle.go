package symbol

import (
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"
)

// Style selects how much detail Demangle keeps.
type Style int

const (
	// StyleFull keeps the complete demangled name.
	StyleFull Style = iota
	// StyleShort drops parameter lists (C++/Rust) and import paths (Go).
	StyleShort
)

// String returns the configuration spelling of the style.
func (s Style) String() string {
	switch s {
	case StyleFull:
		return "full"
	case StyleShort:
		return "short"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// ParseStyle parses "full" or "short". The empty string means full.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full":
		return StyleFull, nil
	case "short":
		return StyleShort, nil
	default:
		return StyleFull, fmt.Errorf("unknown demangle style %q (want full or short)", s)
	}
}

// Demangle returns a readable form of a symbol name. It never fails: if the
// name cannot be demangled it is returned unchanged.
func Demangle(name string) string {
	return DemangleWith(name, StyleFull)
}

// DemangleWith is Demangle with an explicit style.
func DemangleWith(name string, style Style) string {
	if name == "" {
		return name
	}

	if foreign, ok := foreignMangled(name); ok {
		var opts []demangle.Option
		if style == StyleShort {
			opts = append(opts, demangle.NoParams, demangle.NoTemplateParams)
		}
		out, err := demangle.ToString(foreign, opts...)
		if err != nil {
			return name
		}
		return out
	}

	out, ok := demangleGo(name, style)
	if !ok {
		return name
	}
	return out
}

// foreignMangled reports whether name uses the Itanium C++ or Rust mangling
// schemes, returning the name with any platform underscore prefix removed.
func foreignMangled(name string) (string, bool) {
	switch {
	case strings.HasPrefix(name, "_Z"), strings.HasPrefix(name, "_R"):
		return name, true
	case strings.HasPrefix(name, "__Z"):
		// Mach-O prepends an underscore to every C symbol.
		return name[1:], true
	default:
		return "", false
	}
}

// demangleGo makes a Go linker symbol readable: %xx escapes in the import
// path are decoded and generic shape arguments are elided to [...], the way
// Go tracebacks print them.
func demangleGo(name string, style Style) (string, bool) {
	unescaped, ok := unescapePath(name)
	if !ok {
		return "", false
	}

	elided, ok := elideTypeArgs(unescaped)
	if !ok {
		return "", false
	}

	if style == StyleShort {
		if i := strings.LastIndexByte(elided, '/'); i >= 0 {
			elided = elided[i+1:]
		}
	}

	return elided, true
}

// unescapePath decodes the %xx escapes the Go linker applies to import
// paths (for example gopkg.in/yaml%2ev3).
func unescapePath(s string) (string, bool) {
	if !strings.ContainsRune(s, '%') {
		return s, true
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(s) {
			return "", false
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", false
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}
	return b.String(), true
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// elideTypeArgs replaces the contents of every top-level [...] group with an
// ellipsis. Unbalanced brackets fail.
func elideTypeArgs(s string) (string, bool) {
	if !strings.ContainsAny(s, "[]") {
		return s, true
	}

	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '[':
			if depth == 0 {
				b.WriteString("[...]")
			}
			depth++
		case ']':
			depth--
			if depth < 0 {
				return "", false
			}
		default:
			if depth == 0 {
				b.WriteByte(c)
			}
		}
	}
	if depth != 0 {
		return "", false
	}
	return b.String(), true
}
