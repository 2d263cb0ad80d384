package symbol

import (
	"debug/elf"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	ferrors "github.com/coral-mesh/fieldtrace/internal/errors"
	"github.com/coral-mesh/fieldtrace/internal/sys/proc"
)

// elfSymbols holds the function symbols and loadable segments of one ELF
// file, enough to answer "nearest preceding symbol" queries the way dladdr
// does.
type elfSymbols struct {
	loads []elf.ProgHeader // PT_LOAD segments
	funcs []elf.Symbol     // sorted by Value
}

// openELFSymbols parses the symbol tables of the ELF file at path. Both the
// static (.symtab) and dynamic (.dynsym) tables are used, so stripped shared
// libraries still resolve their exported functions.
func openELFSymbols(path string, logger zerolog.Logger) (*elfSymbols, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file %s: %w", path, err)
	}
	defer ferrors.DeferClose(logger, f, "failed to close ELF file")

	e := &elfSymbols{}
	for _, prog := range f.Progs {
		if prog.Type == elf.PT_LOAD {
			e.loads = append(e.loads, prog.ProgHeader)
		}
	}

	symtab, err := f.Symbols()
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Symbol table not available")
	}
	dynsym, err := f.DynamicSymbols()
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Dynamic symbol table not available")
	}

	e.funcs = functionSymbols(append(symtab, dynsym...))
	if len(e.funcs) == 0 {
		return nil, fmt.Errorf("no function symbols in %s (stripped binary?)", path)
	}

	return e, nil
}

// functionSymbols keeps defined function symbols, sorted by address with
// duplicates (the same function in .symtab and .dynsym) removed.
func functionSymbols(symbols []elf.Symbol) []elf.Symbol {
	funcs := make([]elf.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 || s.Name == "" {
			continue
		}
		funcs = append(funcs, s)
	}

	sort.SliceStable(funcs, func(i, j int) bool {
		return funcs[i].Value < funcs[j].Value
	})

	out := funcs[:0]
	for i, s := range funcs {
		if i > 0 && s.Value == out[len(out)-1].Value {
			continue
		}
		out = append(out, s)
	}
	return out
}

// virtualAddr converts a runtime address inside mapping m to the virtual
// address used by the file's symbol table.
func (e *elfSymbols) virtualAddr(m proc.Mapping, addr uint64) (uint64, bool) {
	off := addr - m.Start + m.Offset
	for _, p := range e.loads {
		if off >= p.Off && off < p.Off+p.Filesz {
			return off - p.Off + p.Vaddr, true
		}
	}
	return 0, false
}

// nearest returns the function symbol with the largest address <= vaddr.
func (e *elfSymbols) nearest(vaddr uint64) (elf.Symbol, bool) {
	idx := sort.Search(len(e.funcs), func(i int) bool {
		return e.funcs[i].Value > vaddr
	})
	if idx == 0 {
		return elf.Symbol{}, false
	}
	return e.funcs[idx-1], true
}

// foreignSymbol resolves an address outside the Go runtime table using the
// ELF symbols of the module that contains it. It returns the raw symbol name
// and the symbol's runtime start address.
func (r *RuntimeResolver) foreignSymbol(mod *proc.Module, addr uint64) (string, uint64, bool) {
	m, ok := mod.MappingFor(addr)
	if !ok {
		return "", 0, false
	}

	syms, ok := r.elfCache.Get(mod.Path)
	if !ok {
		var err error
		syms, err = openELFSymbols(mod.Path, r.logger)
		if err != nil {
			r.logger.Debug().Err(err).Str("module", mod.Path).Msg("Module has no usable symbols")
		}
		// Failures are cached too, so a stripped module is opened only once.
		r.elfCache.Put(mod.Path, syms)
	}
	if syms == nil {
		return "", 0, false
	}

	vaddr, ok := syms.virtualAddr(m, addr)
	if !ok {
		return "", 0, false
	}
	sym, ok := syms.nearest(vaddr)
	if !ok {
		return "", 0, false
	}

	return sym.Name, addr - (vaddr - sym.Value), true
}
