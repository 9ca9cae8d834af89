package process_blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"uescope/process"
	"uescope/process/memory_map"
)

// ProcessDump implements process.Process over memory held in this process,
// either loaded from a dump directory or assembled region by region.
type ProcessDump struct {
	PID       process.ProcessID
	Name      string
	Module    string // path of the main executable's mappings
	MemoryMap []memory_map.MemoryMapItem
	Blobs     map[uint64][]byte // Address -> Data
}

var _ process.Process = (*ProcessDump)(nil)

type dumpMetadata struct {
	PID    process.ProcessID `json:"pid"`
	Name   string            `json:"name"`
	Module string            `json:"module"`
}

const (
	metadataFile  = "metadata.json"
	memoryMapFile = "process_memory_map.json"
)

func blobFileName(region memory_map.MemoryMapItem) string {
	return fmt.Sprintf("blob_0x%x_%d.bin", region.Address, region.Size)
}

// NewProcessDump creates a new ProcessDump instance
func NewProcessDump() *ProcessDump {
	return &ProcessDump{
		Blobs: make(map[uint64][]byte),
	}
}

// AddRegion maps data at item.Address. item.Size is taken from data.
func (p *ProcessDump) AddRegion(item memory_map.MemoryMapItem, data []byte) error {
	item.Size = uint(len(data))
	for _, existing := range p.MemoryMap {
		if item.Address < existing.End() && existing.Address < item.End() {
			return fmt.Errorf("region 0x%x overlaps region 0x%x", item.Address, existing.Address)
		}
	}

	p.MemoryMap = append(p.MemoryMap, item)
	memory_map.Sort(p.MemoryMap)
	p.Blobs[item.Address] = data
	return nil
}

func (p *ProcessDump) Open(pid process.ProcessID) error {
	return fmt.Errorf("Open not supported for ProcessDump, use Load")
}

func (p *ProcessDump) Close() error {
	p.Blobs = nil
	p.MemoryMap = nil
	return nil
}

func (p *ProcessDump) GetPID() process.ProcessID {
	return p.PID
}

func (p *ProcessDump) UpdateMemoryMap() error {
	return nil // Memory map is static in a dump
}

func (p *ProcessDump) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	return memory_map.IsValidAddress(uint64(addr), p.MemoryMap)
}

func (p *ProcessDump) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	result := make([]memory_map.MemoryMapItem, len(p.MemoryMap))
	copy(result, p.MemoryMap)
	return result, nil
}

func (p *ProcessDump) MainModule() ([]memory_map.MemoryMapItem, error) {
	if p.Module == "" {
		return nil, process.ErrNoMainModule
	}
	regions := memory_map.ModuleRegions(p.MemoryMap, p.Module)
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: %s", process.ErrNoMainModule, p.Module)
	}
	return regions, nil
}

func (p *ProcessDump) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	// Find the region containing the address
	region := memory_map.IsValidAddress2(uint64(addr), p.MemoryMap)
	if region == nil {
		return nil, process.ErrAddressNotMapped
	}

	// Check if we have data for this region
	data, ok := p.Blobs[region.Address]
	if !ok {
		return nil, fmt.Errorf("no data for region 0x%x: %w", region.Address, process.ErrAddressNotMapped)
	}

	offset := uint64(addr) - region.Address
	if offset+uint64(size) > uint64(len(data)) {
		return nil, fmt.Errorf("read of %d bytes at 0x%x exceeds region 0x%x: %w", size, addr, region.Address, process.ErrAddressNotMapped)
	}

	result := make([]byte, size)
	copy(result, data[offset:offset+uint64(size)])
	return result, nil
}

// Save writes the dump back out in the format Load reads
func (p *ProcessDump) Save(dirname string) error {
	return Save(p, dirname, WithProcessName(p.Name), WithAllRegions())
}

func (p *ProcessDump) Load(dirname string) error {
	metadataBytes, err := os.ReadFile(filepath.Join(dirname, metadataFile))
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata dumpMetadata
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	p.PID = metadata.PID
	p.Name = metadata.Name
	p.Module = metadata.Module

	mmBytes, err := os.ReadFile(filepath.Join(dirname, memoryMapFile))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	var mm []memory_map.MemoryMapItem
	if err := json.Unmarshal(mmBytes, &mm); err != nil {
		return fmt.Errorf("failed to unmarshal memory map: %w", err)
	}
	memory_map.Sort(mm)

	if p.Blobs == nil {
		p.Blobs = make(map[uint64][]byte)
	}

	// Only regions with a saved blob are mapped
	p.MemoryMap = p.MemoryMap[:0]
	for _, region := range mm {
		filename := filepath.Join(dirname, blobFileName(region))
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read blob %s: %w", filename, err)
		}

		p.MemoryMap = append(p.MemoryMap, region)
		p.Blobs[region.Address] = data
	}

	return nil
}
