package callstack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrame_String(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{
			name: "symbol with offset and line",
			frame: Frame{
				SymbolName: "github.com/x/y.(*T).Run",
				SymbolAddr: 0x1000,
				ReturnAddr: 0x1010,
				File:       "/src/y/t.go",
				Line:       42,
			},
			want: "github.com/x/y.(*T).Run+0x10 (/src/y/t.go:42)",
		},
		{
			name: "demangled c++ symbol",
			frame: Frame{
				SymbolName: "_ZN3foo3barEv",
				SymbolAddr: 0x2000,
				ReturnAddr: 0x2000,
			},
			want: "foo::bar()",
		},
		{
			name:  "module only",
			frame: Frame{ModulePath: "/usr/lib/libx.so", ReturnAddr: 0xdead},
			want:  "0xdead in /usr/lib/libx.so",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.frame.String())
		})
	}
}

func TestFrame_Offset(t *testing.T) {
	assert.Equal(t, uintptr(0x10), Frame{SymbolAddr: 0x100, ReturnAddr: 0x110}.Offset())
	assert.Zero(t, Frame{ReturnAddr: 0x110}.Offset(), "unknown symbol address")
	assert.Zero(t, Frame{SymbolAddr: 0x200, ReturnAddr: 0x110}.Offset(), "address before symbol")
}

func TestFrame_DemangledSymbolName(t *testing.T) {
	assert.Equal(t, "", Frame{}.DemangledSymbolName())
	assert.Equal(t, "gopkg.in/yaml.v3.Unmarshal", Frame{SymbolName: "gopkg.in/yaml%2ev3.Unmarshal"}.DemangledSymbolName())
	assert.Equal(t, "Unmarshal", Frame{SymbolName: "gopkg.in/yaml%2ev3.Unmarshal"}.Func().Name)
}

func TestFrame_Comparable(t *testing.T) {
	a := Frame{SymbolName: "f", ReturnAddr: 1}
	b := Frame{SymbolName: "f", ReturnAddr: 1}
	c := Frame{SymbolName: "f", ReturnAddr: 2}

	assert.True(t, a == b)
	assert.False(t, a == c)
}

func TestTrace_CallSiteAndSkip(t *testing.T) {
	trace := Trace{{ReturnAddr: 1}, {ReturnAddr: 2}, {ReturnAddr: 3}}

	f, ok := trace.CallSite(2)
	assert.True(t, ok)
	assert.Equal(t, uintptr(3), f.ReturnAddr)

	_, ok = trace.CallSite(3)
	assert.False(t, ok)
	_, ok = trace.CallSite(-1)
	assert.False(t, ok)

	assert.Equal(t, Trace{{ReturnAddr: 3}}, trace.Skip(2))
	assert.Nil(t, trace.Skip(5))
	assert.Equal(t, trace, trace.Skip(0))
}

func TestTrace_Hash(t *testing.T) {
	a := Trace{{ReturnAddr: 0x10}, {ReturnAddr: 0x20}}
	b := Trace{{ReturnAddr: 0x10, SymbolName: "ignored"}, {ReturnAddr: 0x20}}
	c := Trace{{ReturnAddr: 0x20}, {ReturnAddr: 0x10}}

	assert.Equal(t, a.Hash(), b.Hash(), "only return addresses contribute")
	assert.NotEqual(t, a.Hash(), c.Hash(), "order matters")
}

func TestTrace_String(t *testing.T) {
	trace := Trace{{SymbolName: "a.F"}, {SymbolName: "a.G"}}
	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")

	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "#0"))
	assert.Contains(t, lines[1], "a.G")
}
