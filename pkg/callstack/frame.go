package callstack

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// Frame is one resolved stack frame. Zero-valued fields are unknown.
type Frame struct {
	ModulePath string
	ModuleBase uintptr
	SymbolName string
	SymbolAddr uintptr
	ReturnAddr uintptr
	File       string
	Line       int
}

// DemangledSymbolName returns the readable symbol name, or "" when the frame
// has no symbol. It is recomputed on every call.
func (f Frame) DemangledSymbolName() string {
	return symbol.Demangle(f.SymbolName)
}

// Offset is the distance from the symbol start to the return address, or 0
// when the symbol address is unknown, as it is for inlined functions.
func (f Frame) Offset() uintptr {
	if f.SymbolAddr == 0 || f.ReturnAddr < f.SymbolAddr {
		return 0
	}
	return f.ReturnAddr - f.SymbolAddr
}

// Func splits the symbol name into package, receiver and function.
func (f Frame) Func() symbol.FuncName {
	return symbol.ParseFuncName(f.SymbolName)
}

// String formats the frame as "name+0xoff (file:line)" falling back to the
// module and raw address when the symbol is unknown.
func (f Frame) String() string {
	var b strings.Builder

	if name := f.DemangledSymbolName(); name != "" {
		b.WriteString(name)
		if off := f.Offset(); off != 0 {
			fmt.Fprintf(&b, "+0x%x", off)
		}
	} else {
		fmt.Fprintf(&b, "0x%x", f.ReturnAddr)
		if f.ModulePath != "" {
			fmt.Fprintf(&b, " in %s", f.ModulePath)
		}
	}

	if f.File != "" && f.Line > 0 {
		fmt.Fprintf(&b, " (%s:%d)", f.File, f.Line)
	}

	return b.String()
}

// Trace is an ordered list of frames, innermost first.
type Trace []Frame

// CallSite returns the frame at index i, if the trace is long enough.
func (t Trace) CallSite(i int) (Frame, bool) {
	if i < 0 || i >= len(t) {
		return Frame{}, false
	}
	return t[i], true
}

// Skip returns the trace without its n innermost frames.
func (t Trace) Skip(n int) Trace {
	if n <= 0 {
		return t
	}
	if n >= len(t) {
		return nil
	}
	return t[n:]
}

// Hash fingerprints the return addresses of the trace. Equal traces hash
// equally within one process; the value is meaningless across processes.
func (t Trace) Hash() uint64 {
	buf := make([]byte, 8*len(t))
	for i, f := range t {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(f.ReturnAddr))
	}
	return xxh3.Hash(buf)
}

// String renders one frame per line, innermost first.
func (t Trace) String() string {
	var b strings.Builder
	for i, f := range t {
		fmt.Fprintf(&b, "#%-2d %s\n", i, f)
	}
	return b.String()
}
