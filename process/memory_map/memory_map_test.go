package memory_map

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMaps = `00400000-00452000 r--p 00000000 08:02 173521      /opt/game/bin/Game
00452000-00600000 r-xp 00052000 08:02 173521      /opt/game/bin/Game
00600000-00601000 ---p 00200000 08:02 173521      /opt/game/bin/Game
00601000-00640000 rw-p 00201000 08:02 173521      /opt/game/bin/Game
00640000-00680000 rw-p 00000000 00:00 0
01000000-01100000 rw-p 00000000 00:00 0           [heap]
7f0000000000-7f0000100000 rw-p 00000000 00:00 0
7f0000100000-7f0000200000 rw-p 00000000 00:00 0
7f0000200000-7f0000201000 rw-p 00000000 00:00 0
7f0000300000-7f0000400000 r--s 00000000 08:02 999 /tmp/shared map
7ffd00000000-7ffd00021000 rw-p 00000000 00:00 0   [stack]
garbage line
`

func parseSample(t *testing.T) []MemoryMapItem {
	mm, err := ParseMaps(strings.NewReader(sampleMaps))
	require.NoError(t, err)
	return mm
}

func TestParseMaps(t *testing.T) {
	mm := parseSample(t)
	require.Len(t, mm, 11)

	assert.Equal(t, uint64(0x400000), mm[0].Address)
	assert.Equal(t, uint(0x52000), mm[0].Size)
	assert.Equal(t, "r--p", mm[0].Perms)
	assert.Equal(t, "/opt/game/bin/Game", mm[0].Path)

	assert.Equal(t, "", mm[4].Path)
	assert.Equal(t, "[heap]", mm[5].Path)
	assert.Equal(t, "/tmp/shared map", mm[9].Path)
}

func TestScannable(t *testing.T) {
	regions := Scannable(parseSample(t))

	var starts []uint64
	for _, r := range regions {
		starts = append(starts, r.Address)
	}

	// the file-backed data segment, the shared mapping, the stack and the
	// single-page region are excluded
	assert.Equal(t, []uint64{0x640000, 0x1000000, 0x7f0000000000, 0x7f0000100000}, starts)
}

func TestModuleRegions(t *testing.T) {
	regions := ModuleRegions(parseSample(t), "/opt/game/bin/Game")

	var starts []uint64
	for _, r := range regions {
		starts = append(starts, r.Address)
	}

	assert.Equal(t, []uint64{0x400000, 0x452000, 0x601000, 0x640000}, starts)
}

func TestIsValidAddress(t *testing.T) {
	mm := parseSample(t)
	Sort(mm)

	assert.True(t, IsValidAddress(0x400010, mm))
	assert.False(t, IsValidAddress(0x600010, mm))
	assert.False(t, IsValidAddress(0x300000, mm))

	item := GetMemoryRegionForAddress(0x01000100, mm)
	require.NotNil(t, item)
	assert.Equal(t, "[heap]", item.Path)
}

func TestTrimDeleted(t *testing.T) {
	assert.Equal(t, "/opt/game", TrimDeleted("/opt/game (deleted)"))
}
