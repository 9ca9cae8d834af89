package process

import (
	"uescope/process/memory_map"
)

// MemoryReader is the only capability the object model needs from a target
type MemoryReader interface {
	// ReadMemory reads size bytes at addr. The whole range must lie inside one mapped region.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	// MainModule returns the regions backing the main executable image
	MainModule() ([]memory_map.MemoryMapItem, error)

	// Save saves the process memory and metadata to a directory
	Save(dirname string) error

	MemoryReader
}

// ProcessOffset defines typed reads relative to the start of a snapshot
type ProcessOffset interface {
	// Data returns the raw snapshot bytes
	Data() []byte

	OffsetUINT8(offset ProcessMemoryAddress) (uint8, error)
	OffsetUINT16(offset ProcessMemoryAddress) (uint16, error)
	OffsetUINT32(offset ProcessMemoryAddress) (uint32, error)
	OffsetUINT64(offset ProcessMemoryAddress) (uint64, error)
	OffsetINT32(offset ProcessMemoryAddress) (int32, error)
	OffsetINT64(offset ProcessMemoryAddress) (int64, error)

	// OffsetPOINTER reads a 64-bit pointer value
	OffsetPOINTER(offset ProcessMemoryAddress) (ProcessMemoryAddress, error)

	// OffsetPOINTER2 reads a pointer value, zero on error
	OffsetPOINTER2(offset ProcessMemoryAddress) ProcessMemoryAddress

	// OffsetBlob returns a sub-snapshot
	OffsetBlob(offset ProcessMemoryAddress, size ProcessMemorySize) (ProcessOffset, error)
}
