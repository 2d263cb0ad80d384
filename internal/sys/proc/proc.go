// Package proc provides utilities for reading process state from the Linux
// /proc filesystem. It parses /proc/PID/maps to find which loaded module owns
// an address.
package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Self is the pid-less /proc entry for the calling process.
const Self = "self"

// Mapping is one line of /proc/PID/maps.
type Mapping struct {
	Start  uint64
	End    uint64
	Perms  string
	Offset uint64
	Inode  uint64
	Path   string
}

// Executable reports whether the mapping has the execute permission bit.
func (m Mapping) Executable() bool {
	return len(m.Perms) >= 3 && m.Perms[2] == 'x'
}

// FileBacked reports whether the mapping belongs to a file on disk rather than
// an anonymous region or a pseudo-path like [stack] or [vdso].
func (m Mapping) FileBacked() bool {
	return m.Inode != 0 && strings.HasPrefix(m.Path, "/")
}

// Contains reports whether addr lies inside the mapping.
func (m Mapping) Contains(addr uint64) bool {
	return addr >= m.Start && addr < m.End
}

// Module groups the mappings of a single file.
type Module struct {
	Path string
	// Base is the lowest start address of any mapping of the file, which is
	// where the loader placed its first segment.
	Base     uint64
	Mappings []Mapping
}

// Contains reports whether addr lies inside any mapping of the module.
func (m *Module) Contains(addr uint64) bool {
	for _, mp := range m.Mappings {
		if mp.Contains(addr) {
			return true
		}
	}
	return false
}

// MappingFor returns the mapping of the module that contains addr.
func (m *Module) MappingFor(addr uint64) (Mapping, bool) {
	for _, mp := range m.Mappings {
		if mp.Contains(addr) {
			return mp, true
		}
	}
	return Mapping{}, false
}

// ReadMaps reads and parses /proc/PID/maps. Pass Self for the calling process.
func ReadMaps(pid string) ([]Mapping, error) {
	path := fmt.Sprintf("/proc/%s/maps", pid)
	//nolint:gosec // G304: Path is from /proc filesystem for system information.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	mappings, err := ParseMaps(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return mappings, nil
}

// ParseMaps parses the /proc/PID/maps format.
// Format: address           perms offset  dev   inode   pathname
// Example: 555555554000-555555556000 r-xp 00000000 08:01 123456 /path/to/binary
func ParseMaps(r io.Reader) ([]Mapping, error) {
	var mappings []Mapping
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		m, ok := parseMapsLine(scanner.Text())
		if !ok {
			continue
		}
		mappings = append(mappings, m)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return mappings, nil
}

func parseMapsLine(line string) (Mapping, bool) {
	parts := strings.Fields(line)
	if len(parts) < 5 {
		return Mapping{}, false
	}

	start, end, ok := strings.Cut(parts[0], "-")
	if !ok {
		return Mapping{}, false
	}

	var m Mapping
	var err error
	if m.Start, err = strconv.ParseUint(start, 16, 64); err != nil {
		return Mapping{}, false
	}
	if m.End, err = strconv.ParseUint(end, 16, 64); err != nil {
		return Mapping{}, false
	}
	if m.Offset, err = strconv.ParseUint(parts[2], 16, 64); err != nil {
		return Mapping{}, false
	}
	if m.Inode, err = strconv.ParseUint(parts[4], 10, 64); err != nil {
		return Mapping{}, false
	}
	m.Perms = parts[1]

	// Paths may contain spaces; everything after the inode column belongs to it.
	if len(parts) > 5 {
		m.Path = strings.Join(parts[5:], " ")
		m.Path = strings.TrimSuffix(m.Path, " (deleted)")
	}

	return m, true
}

// GroupModules collapses file-backed mappings into modules, sorted by base
// address.
func GroupModules(mappings []Mapping) []*Module {
	byPath := make(map[string]*Module)
	var modules []*Module

	for _, m := range mappings {
		if !m.FileBacked() {
			continue
		}
		mod, ok := byPath[m.Path]
		if !ok {
			mod = &Module{Path: m.Path, Base: m.Start}
			byPath[m.Path] = mod
			modules = append(modules, mod)
		}
		if m.Start < mod.Base {
			mod.Base = m.Start
		}
		mod.Mappings = append(mod.Mappings, m)
	}

	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Base < modules[j].Base
	})

	return modules
}

// GetBinaryPath returns the path to the executable for the given PID.
func GetBinaryPath(pid string) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/%s/exe", pid))
}
