package process_blob

import (
	"testing"

	"uescope/process"
	"uescope/process/memory_map"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDump(t *testing.T) *ProcessDump {
	dump := NewProcessDump()
	dump.PID = 42
	dump.Name = "game"
	dump.Module = "/opt/game/Game"

	heap := make([]byte, 0x2000)
	heap[0x10] = 0xAB
	require.NoError(t, dump.AddRegion(memory_map.MemoryMapItem{Address: 0x10000000, Perms: "rw-p"}, heap))

	image := make([]byte, 0x1000)
	image[0] = 0x4D
	require.NoError(t, dump.AddRegion(memory_map.MemoryMapItem{Address: 0x400000, Perms: "r--p", Path: dump.Module}, image))
	return dump
}

func TestDumpReadMemory(t *testing.T) {
	dump := newTestDump(t)

	data, err := dump.ReadMemory(0x10000010, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0x00}, data)

	_, err = dump.ReadMemory(0x20000000, 1)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)

	_, err = dump.ReadMemory(0x10001FFF, 2)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)

	assert.True(t, dump.IsValidAddress(0x400000))
	assert.False(t, dump.IsValidAddress(0x401000))
}

func TestDumpAddRegionOverlap(t *testing.T) {
	dump := newTestDump(t)
	err := dump.AddRegion(memory_map.MemoryMapItem{Address: 0x10001000, Perms: "rw-p"}, make([]byte, 0x10))
	assert.Error(t, err)
}

func TestDumpMainModule(t *testing.T) {
	dump := newTestDump(t)

	module, err := dump.MainModule()
	require.NoError(t, err)
	require.Len(t, module, 1)
	assert.Equal(t, uint64(0x400000), module[0].Address)

	dump.Module = ""
	_, err = dump.MainModule()
	assert.ErrorIs(t, err, process.ErrNoMainModule)
}

func TestDumpSaveLoad(t *testing.T) {
	dump := newTestDump(t)
	dir := t.TempDir()

	require.NoError(t, Save(dump, dir, WithProcessName(dump.Name)))

	loaded := NewProcessDump()
	require.NoError(t, loaded.Load(dir))

	assert.Equal(t, process.ProcessID(42), loaded.PID)
	assert.Equal(t, "game", loaded.Name)
	assert.Equal(t, "/opt/game/Game", loaded.Module)
	assert.Len(t, loaded.MemoryMap, 2)

	data, err := loaded.ReadMemory(0x10000010, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB}, data)

	data, err = loaded.ReadMemory(0x400000, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4D}, data)
}

func TestBlobOffsets(t *testing.T) {
	blob := NewProcessBlob(0x1000, []byte{
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF, 'A', 0, 'B', 0,
		0, 0,
	})

	ptr, err := blob.OffsetPOINTER(0)
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(1), ptr)

	v, err := blob.OffsetINT32(8)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), v)

	s, err := blob.OffsetWideString(12)
	require.NoError(t, err)
	assert.Equal(t, "AB", s)

	_, err = blob.OffsetUINT64(12)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, process.ProcessMemoryAddress(0), blob.OffsetPOINTER2(16))

	sub, err := blob.OffsetBlob(8, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, sub.Data())

	data, err := blob.ReadMemory(0x1008, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF}, data)
}
