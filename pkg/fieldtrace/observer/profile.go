package observer

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/pprof/profile"

	"github.com/coral-mesh/fieldtrace/pkg/callstack"
	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
	"github.com/coral-mesh/fieldtrace/pkg/symbol"
)

// Sample value indices of profiles built by Profile.
const (
	SampleReads = iota
	SampleWrites
)

type sampleKey struct {
	hash  uint64
	field string
}

type sampleEntry struct {
	stack      callstack.Trace
	field      string
	parentType string
	reads      int64
	writes     int64
}

// Profile aggregates accesses by call stack and field into a pprof profile
// with "reads" and "writes" sample types. The leaf of every sample is the
// code that called the field's accessor, so `go tool pprof -top` ranks the
// call sites touching a field most often.
type Profile struct {
	mu      sync.Mutex
	start   time.Time
	samples map[sampleKey]*sampleEntry
}

// NewProfile creates an empty profile.
func NewProfile() *Profile {
	return &Profile{
		start:   time.Now(),
		samples: make(map[sampleKey]*sampleEntry),
	}
}

// Observe is a fieldtrace.ErasedObserver.
func (p *Profile) Observe(e fieldtrace.ErasedAccessEvent, _ fieldtrace.AnySelfToken) {
	if e.CallSiteIndex < 0 || e.CallSiteIndex >= len(e.Stack) {
		return
	}
	stack := e.Stack.Skip(e.CallSiteIndex)
	field := fieldLabel(e)

	p.mu.Lock()
	defer p.mu.Unlock()

	key := sampleKey{hash: stack.Hash(), field: field}
	entry, ok := p.samples[key]
	if !ok {
		entry = &sampleEntry{stack: stack, field: field}
		if e.HasParent && e.ParentType != nil {
			entry.parentType = e.ParentType.String()
		}
		p.samples[key] = entry
	}

	switch e.Kind {
	case fieldtrace.KindRead:
		entry.reads++
	case fieldtrace.KindWrite:
		entry.writes++
	}
}

func fieldLabel(e fieldtrace.ErasedAccessEvent) string {
	if name := e.FieldName(); name != "" {
		return name
	}
	if e.ValueType != nil {
		return e.ValueType.String()
	}
	return "unknown"
}

// Len returns the number of distinct samples.
func (p *Profile) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples)
}

// Build assembles the profile collected so far.
func (p *Profile) Build() *profile.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "reads", Unit: "count"},
			{Type: "writes", Unit: "count"},
		},
		TimeNanos:     p.start.UnixNano(),
		DurationNanos: now.Sub(p.start).Nanoseconds(),
	}

	b := &profileBuilder{
		prof:      prof,
		functions: make(map[string]*profile.Function),
		locations: make(map[uintptr]*profile.Location),
		mappings:  make(map[string]*profile.Mapping),
	}

	entries := make([]*sampleEntry, 0, len(p.samples))
	for _, e := range p.samples {
		entries = append(entries, e)
	}
	// Map iteration order is random; keep output deterministic.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].field != entries[j].field {
			return entries[i].field < entries[j].field
		}
		return entries[i].stack.Hash() < entries[j].stack.Hash()
	})

	for _, e := range entries {
		sample := &profile.Sample{
			Value: []int64{e.reads, e.writes},
			Label: map[string][]string{"field": {e.field}},
		}
		if e.parentType != "" {
			sample.Label["parent_type"] = []string{e.parentType}
		}
		for _, f := range e.stack {
			sample.Location = append(sample.Location, b.location(f))
		}
		prof.Sample = append(prof.Sample, sample)
	}

	return prof
}

// Write emits the profile as gzipped protobuf.
func (p *Profile) Write(w io.Writer) error {
	prof := p.Build()
	if err := prof.CheckValid(); err != nil {
		return fmt.Errorf("invalid access profile: %w", err)
	}
	if err := prof.Write(w); err != nil {
		return fmt.Errorf("failed to write access profile: %w", err)
	}
	return nil
}

type profileBuilder struct {
	prof      *profile.Profile
	functions map[string]*profile.Function
	locations map[uintptr]*profile.Location
	mappings  map[string]*profile.Mapping
}

func (b *profileBuilder) location(f callstack.Frame) *profile.Location {
	if loc, ok := b.locations[f.ReturnAddr]; ok {
		return loc
	}

	loc := &profile.Location{
		ID:      uint64(len(b.prof.Location) + 1),
		Address: uint64(f.ReturnAddr),
		Mapping: b.mapping(f),
	}
	if f.SymbolName != "" {
		loc.Line = []profile.Line{{Function: b.function(f), Line: int64(f.Line)}}
	}

	b.locations[f.ReturnAddr] = loc
	b.prof.Location = append(b.prof.Location, loc)
	return loc
}

func (b *profileBuilder) function(f callstack.Frame) *profile.Function {
	key := f.SymbolName + "\x00" + f.File
	if fn, ok := b.functions[key]; ok {
		return fn
	}

	fn := &profile.Function{
		ID:         uint64(len(b.prof.Function) + 1),
		Name:       symbol.Demangle(f.SymbolName),
		SystemName: f.SymbolName,
		Filename:   f.File,
	}
	b.functions[key] = fn
	b.prof.Function = append(b.prof.Function, fn)
	return fn
}

func (b *profileBuilder) mapping(f callstack.Frame) *profile.Mapping {
	if f.ModulePath == "" {
		return nil
	}
	if m, ok := b.mappings[f.ModulePath]; ok {
		return m
	}

	m := &profile.Mapping{
		ID:           uint64(len(b.prof.Mapping) + 1),
		Start:        uint64(f.ModuleBase),
		File:         f.ModulePath,
		HasFunctions: true,
	}
	b.mappings[f.ModulePath] = m
	b.prof.Mapping = append(b.prof.Mapping, m)
	return m
}
