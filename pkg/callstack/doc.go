// Package callstack turns raw return addresses into resolved frames.
//
// A Trace is ordered innermost first: index 0 is the function that asked for
// the capture. Addresses that the symbol resolver cannot attribute to any
// module are dropped rather than kept as placeholders, so a trace can be
// shorter than the raw address list it was built from.
//
//	pcs := callstack.Callers(nil, 1, callstack.DefaultMaxDepth)
//	trace := callstack.Default().Capture(pcs)
//	fmt.Print(trace)
package callstack
