package uobject

import (
	"errors"
	"fmt"

	"uescope/pod"
	"uescope/process"
)

var ErrBadName = errors.New("malformed name entry")

// NameEntry marks pointers into the name table. Its string is read with Runtime.NameEntry.
type NameEntry struct{}

// NameRef identifies a name: an index into the name table plus an instance number
type NameRef struct {
	EntryID        int32
	InstanceNumber int32
}

func (n NameRef) IsNone() bool {
	return n.EntryID == 0
}

// nameChunk bounds a single read while looking for the terminator
const nameChunk = 0x80

// NameEntry reads the string stored in the entry at p. Reads never cross a
// page boundary, so an entry near the end of its region is still readable.
func (rt *Runtime) NameEntry(p Ptr[NameEntry]) (string, error) {
	if p.IsNull() {
		return "", ErrNullPointer
	}

	maxBytes := 2 * (rt.layout.NameMaxLength + 1)
	buf := make([]byte, 0, nameChunk)
	addr := p.Address() + rt.layout.NameEntryName

	for len(buf) < maxBytes {
		size := min(nameChunk, maxBytes-len(buf), int(pageRemaining(addr)))
		data, err := rt.mem.ReadMemory(addr, process.ProcessMemorySize(size))
		if err != nil {
			return "", fmt.Errorf("read name entry at %s: %w", p.String(), err)
		}
		buf = append(buf, data...)
		addr += process.ProcessMemoryAddress(size)

		if n := process.WideStringLen(buf); n < len(buf)/2 {
			return process.DecodeWideString(buf)
		}
	}

	return "", fmt.Errorf("%w: no terminator within %d characters at %s", ErrBadName, rt.layout.NameMaxLength, p.String())
}

func pageRemaining(addr process.ProcessMemoryAddress) process.ProcessMemoryAddress {
	const page = 0x1000
	return page - addr%page
}

// Name resolves ref through the name table. The instance number is not
// part of the rendered name.
func (rt *Runtime) Name(ref NameRef) (string, error) {
	if rt.names != nil {
		if s, ok := rt.names.Get(ref.EntryID); ok {
			return s, nil
		}
	}

	table, err := rt.Names()
	if err != nil {
		return "", err
	}

	if _, err := table.At(int(ref.EntryID)); err != nil {
		return "", fmt.Errorf("name %d: %w", ref.EntryID, err)
	}

	// GNames -> Data -> Data[id]
	entry, err := pod.ReadPath[Ptr[NameEntry]](rt.mem, rt.anchors.GNames, 0, process.ProcessMemorySize(ref.EntryID)*process.PointerSize)
	if err != nil {
		return "", fmt.Errorf("name %d: %w", ref.EntryID, err)
	}

	s, err := rt.NameEntry(entry)
	if err != nil {
		return "", fmt.Errorf("name %d: %w", ref.EntryID, err)
	}

	if rt.names != nil {
		rt.names.Add(ref.EntryID, s)
	}
	return s, nil
}
