// Package symbol resolves raw instruction addresses to the module and symbol
// that contain them, and turns compiler-mangled symbol names into readable
// ones.
//
// Resolution consults, in order:
//   - the Go runtime function table, which covers every Go function in the
//     executable and in loaded plugins and also yields file:line;
//   - the process module map (/proc/self/maps on Linux), which names the
//     loaded file an address belongs to and its base address;
//   - the ELF symbol tables of that file, for code that is not Go (cgo
//     shared libraries), reporting the nearest preceding function symbol.
//
// An address that belongs to no introspectable module (JIT code, stripped
// anonymous mappings) simply does not resolve. That is a normal outcome and
// never an error.
//
// Example:
//
//	r := symbol.NewRuntimeResolver(symbol.WithLogger(logger))
//	if info, ok := r.Resolve(pc); ok {
//	    fmt.Println(symbol.Demangle(info.SymbolName), info.ModulePath)
//	}
package symbol
