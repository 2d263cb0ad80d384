// Package observer provides ready-made fieldtrace.ErasedObserver
// implementations: structured logging, in-memory recording, CEL filtering,
// pprof aggregation and fan-out.
//
// Observers run synchronously on the accessing goroutine. All of them are
// safe to share between fields and goroutines.
package observer
