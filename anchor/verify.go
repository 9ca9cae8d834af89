package anchor

import (
	"errors"
	"fmt"

	"uescope/pod"
	"uescope/process"
)

var ErrBadAnchor = errors.New("anchor does not point at a table")

type tableHeader struct {
	Data uint64
	Num  int32
	Max  int32
}

func (h tableHeader) valid() bool {
	return h.Data != 0 && h.Num >= 0 && h.Num <= h.Max
}

// Verify checks that a points at a name table starting with the expected
// entries and at a well-formed object table
func (l *Locator) Verify(a Anchors) error {
	names, err := pod.ReadT[tableHeader](l.proc, a.GNames)
	if err != nil {
		return fmt.Errorf("read name table header: %w", err)
	}
	if !names.valid() || int(names.Num) < len(firstNames) {
		return fmt.Errorf("%w: name table header %+v", ErrBadAnchor, names)
	}

	entries, err := pod.ReadSliceT[uint64](l.proc, process.ProcessMemoryAddress(names.Data), len(firstNames))
	if err != nil {
		return fmt.Errorf("read name entries: %w", err)
	}

	for i, want := range firstNames {
		size := process.ProcessMemorySize(l.cfg.padding + 2*(len(want)+1))
		data, err := l.proc.ReadMemory(process.ProcessMemoryAddress(entries[i]), size)
		if err != nil {
			return fmt.Errorf("read name %d: %w", i, err)
		}
		got, err := process.DecodeWideString(data[l.cfg.padding:])
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("%w: name %d is %q, want %q", ErrBadAnchor, i, got, want)
		}
	}

	objects, err := pod.ReadT[tableHeader](l.proc, a.GObjects)
	if err != nil {
		return fmt.Errorf("read object table header: %w", err)
	}
	if !objects.valid() {
		return fmt.Errorf("%w: object table header %+v", ErrBadAnchor, objects)
	}

	return nil
}
