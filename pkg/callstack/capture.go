package callstack

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// DefaultMaxDepth is the number of raw frames captured per access.
const DefaultMaxDepth = 32

// Unwinder fills pcs with return addresses of the calling goroutine, skipping
// skip frames, and returns how many it wrote. runtime.Callers satisfies it,
// where skip 0 is runtime.Callers itself and 1 its caller.
type Unwinder func(skip int, pcs []uintptr) int

// Callers captures up to max return addresses. A nil unwinder means
// runtime.Callers. skip counts from the caller of Callers: 0 names the caller
// itself.
func Callers(unwind Unwinder, skip, max int) []uintptr {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	pcs := make([]uintptr, max)
	if unwind == nil {
		// +2 skips runtime.Callers and this function.
		return pcs[:runtime.Callers(skip+2, pcs)]
	}
	// Custom unwinders see the same skip convention as runtime.Callers.
	return pcs[:unwind(skip+2, pcs)]
}

// CapturerOption configures a Capturer.
type CapturerOption func(*Capturer)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger zerolog.Logger) CapturerOption {
	return func(c *Capturer) {
		c.logger = logger
	}
}

// Capturer resolves raw address lists into traces.
type Capturer struct {
	resolver symbol.Resolver
	logger   zerolog.Logger
}

// NewCapturer creates a capturer over the given resolver.
func NewCapturer(resolver symbol.Resolver, opts ...CapturerOption) *Capturer {
	c := &Capturer{
		resolver: resolver,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "callstack").Logger()
	return c
}

// Capture resolves each address independently. Addresses the resolver does
// not recognize are dropped, which shifts the indices of later frames.
func (c *Capturer) Capture(pcs []uintptr) Trace {
	trace := make(Trace, 0, len(pcs))
	for _, pc := range pcs {
		info, ok := c.resolver.Resolve(pc)
		if !ok {
			continue
		}
		trace = append(trace, Frame{
			ModulePath: info.ModulePath,
			ModuleBase: info.ModuleBase,
			SymbolName: info.SymbolName,
			SymbolAddr: info.SymbolAddr,
			ReturnAddr: pc,
			File:       info.File,
			Line:       info.Line,
		})
	}

	if dropped := len(pcs) - len(trace); dropped > 0 {
		c.logger.Trace().
			Int("raw", len(pcs)).
			Int("dropped", dropped).
			Msg("Dropped unresolvable frames")
	}

	return trace
}

var (
	defaultOnce     sync.Once
	defaultCapturer *Capturer
)

// Default returns a process-wide capturer backed by symbol.RuntimeResolver.
func Default() *Capturer {
	defaultOnce.Do(func() {
		defaultCapturer = NewCapturer(symbol.NewRuntimeResolver())
	})
	return defaultCapturer
}
