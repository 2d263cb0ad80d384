package testutil

import (
	"fmt"

	"github.com/coral-mesh/fieldtrace/pkg/callstack"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// FakeStack returns an unwinder that always reports n synthetic return
// addresses (0x1000, 0x1010, ...) and a capturer that resolves each of them
// to main.fn<addr>. Together they make stack capture deterministic.
func FakeStack(n int) (callstack.Unwinder, *callstack.Capturer) {
	unwind := func(_ int, pcs []uintptr) int {
		i := 0
		for ; i < n && i < len(pcs); i++ {
			pcs[i] = uintptr(0x1000 + i*0x10)
		}
		return i
	}
	return unwind, callstack.NewCapturer(symbol.ResolverFunc(func(addr uintptr) (symbol.Info, bool) {
		return symbol.Info{
			ModulePath: "/bin/app",
			SymbolName: fmt.Sprintf("main.fn%x", addr),
			SymbolAddr: addr - 1,
		}, true
	}))
}

// NoSymbols is a resolver that recognizes nothing.
var NoSymbols = symbol.ResolverFunc(func(uintptr) (symbol.Info, bool) {
	return symbol.Info{}, false
})
