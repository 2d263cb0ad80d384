package proc

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaps = `00400000-00401000 r--p 00000000 08:01 1048602 /usr/bin/app
00401000-00600000 r-xp 00001000 08:01 1048602 /usr/bin/app
00600000-00700000 rw-p 00200000 08:01 1048602 /usr/bin/app
00c000000000-00c004000000 rw-p 00000000 00:00 0
7f1e2a000000-7f1e2a028000 r--p 00000000 08:01 2097160 /usr/lib/x86_64-linux-gnu/libc.so.6
7f1e2a028000-7f1e2a1bd000 r-xp 00028000 08:01 2097160 /usr/lib/x86_64-linux-gnu/libc.so.6
7f1e2b000000-7f1e2b001000 r-xp 00000000 08:01 3000001 /tmp/plugin dir/libtrace.so (deleted)
7ffc1c5d4000-7ffc1c5f5000 rw-p 00000000 00:00 0                          [stack]
7ffc1c5fa000-7ffc1c5fc000 r-xp 00000000 00:00 0                          [vdso]
garbage line
`

func TestParseMaps(t *testing.T) {
	mappings, err := ParseMaps(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	require.Len(t, mappings, 9)

	text := mappings[1]
	assert.Equal(t, uint64(0x401000), text.Start)
	assert.Equal(t, uint64(0x600000), text.End)
	assert.Equal(t, uint64(0x1000), text.Offset)
	assert.Equal(t, "r-xp", text.Perms)
	assert.Equal(t, "/usr/bin/app", text.Path)
	assert.True(t, text.Executable())
	assert.True(t, text.FileBacked())

	assert.False(t, mappings[3].FileBacked(), "anonymous heap mapping")
	assert.Equal(t, "/tmp/plugin dir/libtrace.so", mappings[6].Path)
	assert.False(t, mappings[8].FileBacked(), "[vdso] is not a file")
}

func TestGroupModules(t *testing.T) {
	mappings, err := ParseMaps(strings.NewReader(sampleMaps))
	require.NoError(t, err)

	modules := GroupModules(mappings)
	require.Len(t, modules, 3)

	assert.Equal(t, "/usr/bin/app", modules[0].Path)
	assert.Equal(t, uint64(0x400000), modules[0].Base)
	assert.Len(t, modules[0].Mappings, 3)

	libc := modules[1]
	assert.Equal(t, uint64(0x7f1e2a000000), libc.Base)
	assert.True(t, libc.Contains(0x7f1e2a030000))
	assert.False(t, libc.Contains(0x7f1e2a1bd000))

	m, ok := libc.MappingFor(0x7f1e2a030000)
	require.True(t, ok)
	assert.Equal(t, uint64(0x28000), m.Offset)

	_, ok = libc.MappingFor(0x1)
	assert.False(t, ok)
}

func TestReadMaps_Self(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("/proc is only available on Linux")
	}

	mappings, err := ReadMaps(Self)
	require.NoError(t, err)
	assert.NotEmpty(t, GroupModules(mappings))
}

func TestGetBinaryPath_Self(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("/proc is only available on Linux")
	}

	want, err := os.Executable()
	require.NoError(t, err)

	got, err := GetBinaryPath(Self)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
