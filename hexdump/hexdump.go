// Package hexdump renders target memory as an annotated hex listing
package hexdump

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"uescope/process"
	"uescope/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Span is a highlighted address range
type Span struct {
	Start process.ProcessMemoryAddress
	Len   int
}

func (s Span) contains(addr process.ProcessMemoryAddress) bool {
	return addr >= s.Start && addr < s.Start+process.ProcessMemoryAddress(s.Len)
}

// Options controls the listing
type Options struct {
	// BytesPerLine defaults to 16
	BytesPerLine int

	// Highlight marks ranges such as a pattern match
	Highlight []Span

	// MemoryMap, when set, annotates each line's aligned qwords that point into a mapped region
	MemoryMap []memory_map.MemoryMapItem

	// Color enables ANSI colors for highlighted bytes
	Color bool

	// MaxLines truncates the listing, 0 for no limit
	MaxLines int
}

func DefaultOptions() Options {
	return Options{BytesPerLine: 16, Color: true}
}

// Dump renders data as if it was read at base
func Dump(data []byte, base process.ProcessMemoryAddress, opts Options) string {
	var sb strings.Builder
	_ = Fdump(&sb, data, base, opts)
	return sb.String()
}

// Fdump writes one line per BytesPerLine bytes:
//
//	address  hex bytes | hex bytes  |ascii|  -> pointers
func Fdump(w io.Writer, data []byte, base process.ProcessMemoryAddress, opts Options) error {
	if opts.BytesPerLine <= 0 {
		opts.BytesPerLine = 16
	}

	for line, off := 0, 0; off < len(data); line, off = line+1, off+opts.BytesPerLine {
		if opts.MaxLines > 0 && line >= opts.MaxLines {
			_, err := fmt.Fprintf(w, "... %d more bytes\n", len(data)-off)
			return err
		}
		end := min(off+opts.BytesPerLine, len(data))
		if _, err := io.WriteString(w, formatLine(data[off:end], base+process.ProcessMemoryAddress(off), opts)); err != nil {
			return err
		}
	}
	return nil
}

func (o Options) highlighted(addr process.ProcessMemoryAddress) bool {
	for _, s := range o.Highlight {
		if s.contains(addr) {
			return true
		}
	}
	return false
}

func (o Options) paint(addr process.ProcessMemoryAddress, s string) string {
	if o.Color && o.highlighted(addr) {
		return coloransi.Color(coloransi.Red, coloransi.ColorOrange, s)
	}
	return s
}

func formatLine(data []byte, addr process.ProcessMemoryAddress, opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%016x  ", uint64(addr))

	half := opts.BytesPerLine / 2
	for i := range opts.BytesPerLine {
		if i == half && half > 0 {
			sb.WriteString("| ")
		}
		if i >= len(data) {
			sb.WriteString("   ")
			continue
		}
		sb.WriteString(opts.paint(addr+process.ProcessMemoryAddress(i), fmt.Sprintf("%02x", data[i])))
		sb.WriteByte(' ')
	}

	sb.WriteString(" |")
	for i, b := range data {
		c := "."
		if b >= 0x20 && b < 0x7f {
			c = string(rune(b))
		}
		sb.WriteString(opts.paint(addr+process.ProcessMemoryAddress(i), c))
	}
	sb.WriteString("|")

	if len(opts.MemoryMap) > 0 {
		for i := 0; i+process.PointerSize <= len(data); i += process.PointerSize {
			ptr := binary.LittleEndian.Uint64(data[i:])
			if region := memory_map.GetMemoryRegionForAddress(ptr, opts.MemoryMap); region != nil {
				fmt.Fprintf(&sb, "  -> 0x%x", ptr)
				if region.Path != "" {
					fmt.Fprintf(&sb, " (%s)", region.Path)
				}
			}
		}
	}

	sb.WriteString("\n")
	return sb.String()
}
