// Package process provides the interfaces and types shared by every memory backend
package process

import "errors"

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrInvalidPointer is returned when a pointer path reaches a null pointer
	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrProcessNotFound is returned when no running process matches a pid or name
	ErrProcessNotFound = errors.New("process not found")

	// ErrNoMainModule is returned when the main executable image cannot be located
	ErrNoMainModule = errors.New("main module not found")
)

// PointerSize is the width of a pointer in every supported target
const PointerSize = 8

// MaxUserAddress bounds the canonical user-space half of a 64-bit address space
const MaxUserAddress = ProcessMemoryAddress(0x800000000000)
