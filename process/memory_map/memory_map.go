package memory_map

import (
	"fmt"
	"sort"
	"strings"
)

// PageSize is the smallest region the scanner considers worth reading
const PageSize = 0x1000

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 `json:"address"` // The starting address of the memory region
	Size    uint   `json:"size"`    // The size of the memory region in bytes
	Perms   string `json:"perms"`   // Permissions (e.g., "r-xp" for read, execute, private)
	Path    string `json:"path"`    // Backing file or pseudo path, empty for anonymous memory
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s, Path: %s", mmItem.Address, mmItem.Size, mmItem.Perms, mmItem.Path)
}

// End returns the first address past the region
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return IsReadablePerms(mmItem.Perms)
}

func (mmItem MemoryMapItem) IsWritable() bool {
	return IsWritablePerms(mmItem.Perms)
}

func (mmItem MemoryMapItem) IsPrivate() bool {
	return len(mmItem.Perms) > 3 && mmItem.Perms[3] == 'p'
}

// IsAnonymous reports whether the region is not backed by a file
func (mmItem MemoryMapItem) IsAnonymous() bool {
	return mmItem.Path == "" || mmItem.Path == "[heap]"
}

// MemoryMap defines the interface for operations related to a process's memory map
type MemoryMap interface {
	// ReadMemoryMap reads and parses the memory map for a process
	ReadMemoryMap(pid int) ([]MemoryMapItem, error)
}

func IsReadablePerms(perms string) bool {
	return len(perms) > 0 && perms[0] == 'r'
}

func IsWritablePerms(perms string) bool {
	return len(perms) > 1 && perms[1] == 'w'
}

// IsScannable reports whether a region can hold heap allocations of the target:
// committed private read/write anonymous memory larger than one page.
func IsScannable(item MemoryMapItem) bool {
	return item.IsReadable() &&
		item.IsWritable() &&
		item.IsPrivate() &&
		item.IsAnonymous() &&
		item.Size > PageSize
}

// Sort orders a memory map by address in place
func Sort(mm []MemoryMapItem) {
	sort.Slice(mm, func(i, j int) bool {
		return mm[i].Address < mm[j].Address
	})
}

// Scannable filters a memory map down to the regions pattern scans should visit
func Scannable(mm []MemoryMapItem) []MemoryMapItem {
	sorted := make([]MemoryMapItem, len(mm))
	copy(sorted, mm)
	Sort(sorted)

	var filtered []MemoryMapItem
	for _, item := range sorted {
		if IsScannable(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// ModuleRegions returns the readable mappings of the file at path together with
// the anonymous read/write mapping that directly follows the last of them, which
// is where a loader places zero-initialised data.
func ModuleRegions(mm []MemoryMapItem, path string) []MemoryMapItem {
	sorted := make([]MemoryMapItem, len(mm))
	copy(sorted, mm)
	Sort(sorted)

	var out []MemoryMapItem
	var end uint64
	for _, item := range sorted {
		if item.Path == path {
			if item.IsReadable() {
				out = append(out, item)
			}
			end = item.End()
			continue
		}
		if end != 0 && item.Address == end && item.Path == "" && item.IsReadable() && item.IsWritable() {
			out = append(out, item)
			end = 0
		}
	}
	return out
}

// TrimDeleted strips the marker the kernel appends to replaced executables
func TrimDeleted(path string) string {
	return strings.TrimSuffix(path, " (deleted)")
}

// IsValidAddress checks if an address is within a valid, readable memory region
func IsValidAddress(addr uint64, memoryMap []MemoryMapItem) bool {
	item := IsValidAddress2(addr, memoryMap)
	return item != nil && item.IsReadable()
}

// IsValidAddress2 returns the region containing addr. The map must be sorted.
func IsValidAddress2(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].Address+uint64(memoryMap[i].Size) > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// GetMemoryRegionForAddress returns the memory region containing an address
func GetMemoryRegionForAddress(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	for i := range memoryMap {
		if addr >= memoryMap[i].Address && addr < memoryMap[i].End() {
			return &memoryMap[i]
		}
	}
	return nil
}
