package search

import (
	"testing"

	"uescope/process"
	"uescope/process/memory_map"
	"uescope/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDump(t *testing.T, regions map[uint64][]byte) *process_blob.ProcessDump {
	dump := process_blob.NewProcessDump()
	for addr, data := range regions {
		require.NoError(t, dump.AddRegion(memory_map.MemoryMapItem{Address: addr, Perms: "rw-p"}, data))
	}
	return dump
}

func TestFirstMatchAcrossRegions(t *testing.T) {
	low := make([]byte, 0x2000)
	high := make([]byte, 0x2000)
	copy(low[0x1800:], []byte{0xDE, 0xAD})
	copy(high[0x10:], []byte{0xDE, 0xAD})

	dump := newDump(t, map[uint64][]byte{0x30000: high, 0x10000: low})

	s := New(WithMaxDOP(4))
	addr, ok, err := s.First(dump, process.AOBFromBytes([]byte{0xDE, 0xAD}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, process.ProcessMemoryAddress(0x11800), addr)

	all, err := s.All(dump, process.AOBFromBytes([]byte{0xDE, 0xAD}))
	require.NoError(t, err)
	assert.Equal(t, []process.ProcessMemoryAddress{0x11800, 0x30010}, all)
}

func TestNoMatchAcrossRegionBoundary(t *testing.T) {
	a := make([]byte, 0x2000)
	b := make([]byte, 0x2000)
	a[len(a)-1] = 0xAA
	b[0] = 0xBB

	dump := newDump(t, map[uint64][]byte{0x10000: a, 0x12000: b})

	s := New(WithRegionFilter(func(memory_map.MemoryMapItem) bool { return true }))
	_, ok, err := s.First(dump, process.AOBFromBytes([]byte{0xAA, 0xBB}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChunkBoundary(t *testing.T) {
	data := make([]byte, 0x2000)
	copy(data[0xFFE:], []byte{1, 2, 3, 4})

	dump := newDump(t, map[uint64][]byte{0x10000: data})
	s := New(WithChunkSize(0x1000))

	aob := process.AOBFromBytes([]byte{1, 2, 3, 4})
	all, err := s.All(dump, aob)
	require.NoError(t, err)
	assert.Equal(t, []process.ProcessMemoryAddress{0x10FFE}, all)
}

func TestChunkBoundaryNoDuplicates(t *testing.T) {
	data := make([]byte, 0x2000)
	copy(data[0x1000:], []byte{7, 7})

	dump := newDump(t, map[uint64][]byte{0x10000: data})
	s := New(WithChunkSize(0x1000))

	all, err := s.All(dump, process.AOBFromBytes([]byte{7, 7}))
	require.NoError(t, err)
	assert.Equal(t, []process.ProcessMemoryAddress{0x11000}, all)
}

func TestFirstPerRegion(t *testing.T) {
	r1 := make([]byte, 0x2000)
	r2 := make([]byte, 0x2000)
	r3 := make([]byte, 0x2000)
	r1[5] = 0x42
	r1[6] = 0x42
	r3[9] = 0x42

	dump := newDump(t, map[uint64][]byte{0x10000: r1, 0x20000: r2, 0x30000: r3})
	s := New()
	regions, err := s.Regions(dump)
	require.NoError(t, err)
	require.Len(t, regions, 3)

	hits, err := s.FirstPerRegion(dump, regions, process.AOBFromBytes([]byte{0x42}))
	require.NoError(t, err)
	assert.Equal(t, []process.ProcessMemoryAddress{0x10005, 0x30009}, hits)
}

func TestSmallRegionsSkipped(t *testing.T) {
	dump := newDump(t, map[uint64][]byte{0x10000: {0xAA, 0xBB}})
	_, ok, err := New().First(dump, process.AOBFromBytes([]byte{0xAA, 0xBB}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyPattern(t *testing.T) {
	dump := newDump(t, nil)
	_, _, err := New().First(dump, process.AOB{})
	assert.ErrorIs(t, err, process.ErrEmptyPattern)
}
