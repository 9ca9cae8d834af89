package process

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

const (
	maskExact    = 0xFF
	maskWildcard = 0x00
)

var ErrEmptyPattern = errors.New("empty pattern")

// AOB (Array of Bytes) represents a pattern to search for in memory.
// Wildcard positions carry a zero pattern byte and a zero mask byte.
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // 0xFF means exact match and 0x00 means wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	return len(aob.Pattern) > 0 && len(aob.Pattern) == len(aob.Mask)
}

// Len returns the pattern width in bytes
func (aob AOB) Len() int {
	return len(aob.Pattern)
}

func NewAOB(pattern, mask []byte) (AOB, error) {
	if len(pattern) != len(mask) {
		return AOB{}, fmt.Errorf("pattern and mask must be of the same length")
	}
	if len(pattern) == 0 {
		return AOB{}, ErrEmptyPattern
	}
	return AOB{Pattern: pattern, Mask: mask}, nil
}

// ParseAOB parses a textual pattern such as "48 8B ?? ?? C0" or "00,ba,?,f0".
// Tokens are separated by spaces or commas, "?" and "??" are wildcards.
func ParseAOB(s string) (AOB, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	if len(parts) == 0 {
		return AOB{}, ErrEmptyPattern
	}

	aob := AOB{
		Pattern: make([]byte, 0, len(parts)),
		Mask:    make([]byte, 0, len(parts)),
	}

	for _, part := range parts {
		if part == "??" || part == "?" {
			aob.Pattern = append(aob.Pattern, 0)
			aob.Mask = append(aob.Mask, maskWildcard)
			continue
		}

		val, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return AOB{}, fmt.Errorf("invalid hex byte: %s", part)
		}
		aob.Pattern = append(aob.Pattern, byte(val))
		aob.Mask = append(aob.Mask, maskExact)
	}

	return aob, nil
}

// AOBFromBytes builds an exact pattern from raw bytes
func AOBFromBytes(b []byte) AOB {
	pattern := make([]byte, len(b))
	copy(pattern, b)
	return AOB{Pattern: pattern, Mask: bytes.Repeat([]byte{maskExact}, len(b))}
}

// AOBFromAddress builds an exact pattern matching a little-endian 64-bit pointer to addr
func AOBFromAddress(addr ProcessMemoryAddress) AOB {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(addr))
	return AOBFromBytes(b[:])
}

// Wildcards returns a pattern of n wildcard bytes
func Wildcards(n int) AOB {
	return AOB{Pattern: make([]byte, n), Mask: make([]byte, n)}
}

// Concat joins patterns back to back
func Concat(parts ...AOB) AOB {
	var out AOB
	for _, part := range parts {
		out.Pattern = append(out.Pattern, part.Pattern...)
		out.Mask = append(out.Mask, part.Mask...)
	}
	return out
}

// String renders the pattern in the same notation ParseAOB accepts
func (aob AOB) String() string {
	var sb strings.Builder
	for i, b := range aob.Pattern {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if aob.Mask[i] == maskWildcard {
			sb.WriteString("??")
		} else {
			fmt.Fprintf(&sb, "%02X", b)
		}
	}
	return sb.String()
}

func (aob AOB) matchAt(data []byte, i int) bool {
	for j, b := range aob.Pattern {
		if aob.Mask[j] != maskWildcard && data[i+j]&aob.Mask[j] != b&aob.Mask[j] {
			return false
		}
	}
	return true
}

// anchorByte returns the first exact byte of the pattern and its position
func (aob AOB) anchorByte() (int, byte, bool) {
	for j, m := range aob.Mask {
		if m == maskExact {
			return j, aob.Pattern[j], true
		}
	}
	return 0, 0, false
}

// Find returns the offset of the first match of the pattern in data.
// A pattern longer than data never matches.
func (aob AOB) Find(data []byte) (int, bool) {
	n := len(aob.Pattern)
	if n == 0 || n > len(data) {
		return 0, false
	}

	last := len(data) - n
	pos, first, ok := aob.anchorByte()
	if !ok {
		return 0, true
	}

	for i := 0; i <= last; {
		k := bytes.IndexByte(data[i+pos:last+pos+1], first)
		if k < 0 {
			return 0, false
		}
		i += k
		if aob.matchAt(data, i) {
			return i, true
		}
		i++
	}
	return 0, false
}

// FindAll returns the offsets of every match in data, overlapping matches included
func (aob AOB) FindAll(data []byte) []int {
	var results []int
	for off := 0; ; {
		i, ok := aob.Find(data[off:])
		if !ok {
			return results
		}
		results = append(results, off+i)
		off += i + 1
		if off > len(data) {
			return results
		}
	}
}
