package hexdump

import (
	"encoding/binary"
	"strings"
	"testing"

	"uescope/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/stretchr/testify/assert"
)

func TestDumpLine(t *testing.T) {
	data := []byte("Hi\x00\x01\x7fxyz")
	out := Dump(data, 0x1000, Options{BytesPerLine: 8})
	assert.Equal(t, "0000000000001000  48 69 00 01 | 7f 78 79 7a  |Hi...xyz|\n", out)
}

func TestDumpShortLineKeepsColumns(t *testing.T) {
	out := Dump([]byte{0xaa, 0xbb, 0xcc}, 0, Options{BytesPerLine: 8})
	assert.Equal(t, "0000000000000000  aa bb cc    |              |...|\n", out)
}

func TestDumpPointers(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint64(data, 0x2010)
	binary.LittleEndian.PutUint64(data[8:], 0x9999)

	mm := []memory_map.MemoryMapItem{{Address: 0x2000, Size: 0x100, Perms: "rw-p", Path: "/opt/game/Binaries/Game"}}
	out := Dump(data, 0x2000, Options{MemoryMap: mm})

	assert.Contains(t, out, "  -> 0x2010 (/opt/game/Binaries/Game)")
	assert.NotContains(t, out, "0x9999")
}

func TestDumpMaxLines(t *testing.T) {
	out := Dump(make([]byte, 40), 0, Options{MaxLines: 1})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "... 24 more bytes", lines[1])
}

func TestDumpHighlight(t *testing.T) {
	data := []byte("abcd")
	opts := Options{BytesPerLine: 4, Highlight: []Span{{Start: 0x11, Len: 2}}}

	plain := Dump(data, 0x10, opts)
	assert.Equal(t, "0000000000000010  61 62 | 63 64  |abcd|\n", plain)

	opts.Color = true
	colored := Dump(data, 0x10, opts)
	assert.Contains(t, colored, coloransi.Color(coloransi.Red, coloransi.ColorOrange, "62"))
	assert.Contains(t, colored, coloransi.Color(coloransi.Red, coloransi.ColorOrange, "c"))
	assert.NotContains(t, colored, coloransi.Color(coloransi.Red, coloransi.ColorOrange, "61"))
}
