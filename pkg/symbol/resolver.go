package symbol

import (
	"runtime"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/coral-mesh/fieldtrace/internal/sys/proc"
)

const (
	// DefaultELFCacheSize bounds how many parsed ELF symbol tables are kept.
	DefaultELFCacheSize = 16

	// DefaultRefreshInterval is the minimum time between two re-reads of the
	// module map triggered by unknown addresses.
	DefaultRefreshInterval = time.Second
)

// Info describes what is known about an address. Zero values mean the field
// could not be determined.
type Info struct {
	// ModulePath is the file the address was loaded from.
	ModulePath string
	// ModuleBase is the address the module was loaded at.
	ModuleBase uintptr
	// SymbolName is the raw (possibly mangled) name of the nearest symbol at
	// or before the address.
	SymbolName string
	// SymbolAddr is the start address of that symbol, zero for functions
	// that were inlined into their caller.
	SymbolAddr uintptr
	// File and Line locate the address in source, when debug info allows.
	File string
	Line int
}

// Resolver maps an instruction address to module and symbol information.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// Resolve returns ok == false when addr belongs to no loaded,
	// introspectable module.
	Resolve(addr uintptr) (Info, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(addr uintptr) (Info, bool)

// Resolve calls f(addr).
func (f ResolverFunc) Resolve(addr uintptr) (Info, bool) {
	return f(addr)
}

// Option configures a RuntimeResolver.
type Option func(*RuntimeResolver)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *RuntimeResolver) {
		r.logger = logger
	}
}

// WithELFCacheSize bounds the number of cached ELF symbol tables.
func WithELFCacheSize(n int) Option {
	return func(r *RuntimeResolver) {
		r.elfCache = newLRUCache[string, *elfSymbols](n)
	}
}

// WithRefreshInterval sets the minimum delay between module map re-reads.
func WithRefreshInterval(d time.Duration) Option {
	return func(r *RuntimeResolver) {
		r.refreshInterval = d
	}
}

// RuntimeResolver resolves addresses of the calling process.
type RuntimeResolver struct {
	logger          zerolog.Logger
	executable      string
	refreshInterval time.Duration
	elfCache        *lruCache[string, *elfSymbols]
	refreshes       singleflight.Group

	mu          sync.RWMutex
	modules     []*proc.Module
	loaded      bool
	lastRefresh time.Time
}

// NewRuntimeResolver creates a resolver for the current process. It never
// fails: facilities that are unavailable on the platform only reduce the
// amount of information returned.
func NewRuntimeResolver(opts ...Option) *RuntimeResolver {
	r := &RuntimeResolver{
		logger:          zerolog.Nop(),
		refreshInterval: DefaultRefreshInterval,
		elfCache:        newLRUCache[string, *elfSymbols](DefaultELFCacheSize),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "symbol-resolver").Logger()

	if exe, err := executablePath(); err == nil {
		r.executable = exe
	} else {
		r.logger.Debug().Err(err).Msg("Failed to get executable path")
	}

	return r
}

// Resolve implements Resolver.
func (r *RuntimeResolver) Resolve(addr uintptr) (Info, bool) {
	if addr == 0 {
		return Info{}, false
	}

	var info Info
	found := false

	// Return addresses point after the call; step back into the call
	// instruction so the lookup lands in the calling function.
	if fn := runtime.FuncForPC(addr - 1); fn != nil {
		info.SymbolName = fn.Name()
		info.File, info.Line = fn.FileLine(addr - 1)
		found = true
		// For an inlined function Entry is the entry of the function it was
		// inlined into, so the symbol start is unknown.
		if outer := runtime.FuncForPC(fn.Entry()); outer != nil && outer.Name() == fn.Name() {
			info.SymbolAddr = fn.Entry()
		}
	}

	mod, ok := r.moduleFor(uint64(addr - 1))
	switch {
	case ok:
		info.ModulePath = mod.Path
		found = true
		if base, err := safecast.Conv[uintptr](mod.Base); err == nil {
			info.ModuleBase = base
		}
		if info.SymbolName == "" {
			if name, start, ok := r.foreignSymbol(mod, uint64(addr-1)); ok {
				if sa, err := safecast.Conv[uintptr](start); err == nil {
					info.SymbolName = name
					info.SymbolAddr = sa
				}
			}
		}
	case found:
		// No module map on this platform; Go code lives in the executable.
		info.ModulePath = r.executable
	}

	return info, found
}

// Refresh re-reads the module map immediately.
func (r *RuntimeResolver) Refresh() error {
	modules, err := loadModules()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastRefresh = time.Now()
	r.loaded = true
	if err != nil {
		return err
	}
	r.modules = modules
	return nil
}

// moduleFor finds the module containing addr. An unknown address triggers at
// most one module map re-read per refresh interval, so modules loaded after
// start-up are picked up. Concurrent misses share a single re-read.
func (r *RuntimeResolver) moduleFor(addr uint64) (*proc.Module, bool) {
	r.mu.RLock()
	loaded := r.loaded
	mod, ok := findModule(r.modules, addr)
	stale := time.Since(r.lastRefresh) >= r.refreshInterval
	r.mu.RUnlock()

	if ok || (loaded && !stale) {
		return mod, ok
	}

	_, err, _ := r.refreshes.Do("maps", func() (any, error) {
		return nil, r.Refresh()
	})
	if err != nil {
		r.logger.Debug().Err(err).Msg("Module map not available")
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return findModule(r.modules, addr)
}

func findModule(modules []*proc.Module, addr uint64) (*proc.Module, bool) {
	for _, m := range modules {
		if m.Contains(addr) {
			return m, true
		}
	}
	return nil, false
}
