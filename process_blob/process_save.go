package process_blob

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"uescope/process"
	"uescope/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// MaxSavedRegion caps the size of a single saved region
const MaxSavedRegion = 100 * 1024 * 1024

type saveConfig struct {
	name string
	all  bool
	log  *logger.Logger
}

// SaveOption configures Save
type SaveOption func(*saveConfig)

// WithProcessName records the target's name in the dump metadata
func WithProcessName(name string) SaveOption {
	return func(c *saveConfig) {
		c.name = name
	}
}

// WithAllRegions saves every readable region instead of only the scannable
// heap regions and the main image
func WithAllRegions() SaveOption {
	return func(c *saveConfig) {
		c.all = true
	}
}

func WithSaveLogger(log *logger.Logger) SaveOption {
	return func(c *saveConfig) {
		c.log = log
	}
}

// Save writes metadata, the memory map and one blob file per saved region to dirname.
// By default only the regions introspection needs are saved, so a dump can be
// reopened with ProcessDump and resolved offline.
func Save(proc process.Process, dirname string, opts ...SaveOption) error {
	cfg := saveConfig{name: "unknown"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "dump"))
	}

	if err := os.MkdirAll(dirname, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := proc.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to update memory map: %w", err)
	}

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return fmt.Errorf("failed to get memory map: %w", err)
	}

	metadata := dumpMetadata{PID: proc.GetPID(), Name: cfg.name}
	module, err := proc.MainModule()
	if err != nil {
		cfg.log.Warn("main module not found, dump cannot be resolved offline:", err)
	} else {
		metadata.Module = module[0].Path
	}

	var regions []memory_map.MemoryMapItem
	if cfg.all {
		for _, region := range mm {
			if region.IsReadable() {
				regions = append(regions, region)
			}
		}
	} else {
		regions = append(memory_map.Scannable(mm), module...)
		memory_map.Sort(regions)
	}

	metadataJSON, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, metadataFile), metadataJSON, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	cfg.log.Infoln("Saving", len(regions), "regions to", dirname)

	saved := make([]memory_map.MemoryMapItem, 0, len(regions))
	for _, region := range regions {
		if region.Size > MaxSavedRegion {
			cfg.log.Infoln("Skipping large region at", fmt.Sprintf("%x", region.Address), "(size:", region.Size/1024/1024, "MB)")
			continue
		}

		data, err := proc.ReadMemory(process.ProcessMemoryAddress(region.Address), process.ProcessMemorySize(region.Size))
		if err != nil {
			cfg.log.Debugln("Failed to read memory region at", fmt.Sprintf("%x", region.Address), err)
			continue
		}

		if err := os.WriteFile(filepath.Join(dirname, blobFileName(region)), data, 0644); err != nil {
			return fmt.Errorf("failed to write region 0x%x: %w", region.Address, err)
		}
		saved = append(saved, region)
	}

	memoryMapJSON, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal memory map: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dirname, memoryMapFile), memoryMapJSON, 0644); err != nil {
		return fmt.Errorf("failed to write memory map file: %w", err)
	}

	cfg.log.Infoln("Process dump saved:", len(saved), "of", len(regions), "regions")
	return nil
}
