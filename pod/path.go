package pod

import (
	"fmt"

	"uescope/process"
)

// ReadPath reads a T at the end of a pointer path. Starting at base, every
// offset but the last is added and the pointer stored there is followed.
// The last offset is added to the final pointer and T is read from there.
// With no offsets T is read at base.
func ReadPath[T any](mem process.MemoryReader, base process.ProcessMemoryAddress, offsets ...process.ProcessMemorySize) (T, error) {
	addr := base

	for i := 0; i < len(offsets)-1; i++ {
		at := addr + process.ProcessMemoryAddress(offsets[i])

		ptr, err := ReadT[uint64](mem, at)
		if err != nil {
			return *new(T), fmt.Errorf("pointer %d at %s: %w", i, at.ToString(), err)
		}
		if ptr == 0 {
			return *new(T), fmt.Errorf("pointer %d at %s: %w", i, at.ToString(), process.ErrInvalidPointer)
		}

		addr = process.ProcessMemoryAddress(ptr)
	}

	if len(offsets) > 0 {
		addr += process.ProcessMemoryAddress(offsets[len(offsets)-1])
	}

	v, err := ReadT[T](mem, addr)
	if err != nil {
		return *new(T), fmt.Errorf("value at %s: %w", addr.ToString(), err)
	}
	return v, nil
}
