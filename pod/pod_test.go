package pod

import (
	"testing"

	"uescope/process_blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type header struct {
	Data uint64
	Num  int32
	Max  int32
}

func TestReadWriteT(t *testing.T) {
	h := header{Data: 0x1122334455667788, Num: 3, Max: 4}
	b := WriteT(h)
	require.Len(t, b, 16)
	assert.Equal(t, byte(0x88), b[0])

	mem := process_blob.NewProcessBlob(0x1000, b)
	got, err := ReadT[header](mem, 0x1000)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = ReadT[header](mem, 0x1008)
	assert.Error(t, err)
}

func TestReadSliceT(t *testing.T) {
	buf := make([]byte, 24)
	require.NoError(t, PutT(buf, 0, uint64(1)))
	require.NoError(t, PutT(buf, 8, uint64(2)))
	require.NoError(t, PutT(buf, 16, uint64(3)))
	assert.Error(t, PutT(buf, 20, uint64(4)))

	mem := process_blob.NewProcessBlob(0x2000, buf)
	vals, err := ReadSliceT[uint64](mem, 0x2000, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3}, vals)

	vals, err = ReadSliceT[uint64](mem, 0x2000, 0)
	require.NoError(t, err)
	assert.Empty(t, vals)

	_, err = ReadSliceT[uint64](mem, 0x2000, -1)
	assert.Error(t, err)
}

func TestRejectsPointers(t *testing.T) {
	type withString struct {
		S string
	}
	_, err := ReadBlob[withString](make([]byte, 64))
	assert.ErrorIs(t, err, ErrNotPOD)
}
