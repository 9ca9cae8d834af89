//go:build linux

package process_linux

import (
	"fmt"
	"os"
	"sync"

	"uescope/process"
	"uescope/process/memory_map"
	"uescope/process_blob"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid process.ProcessID
	exe string
	log *logger.Logger
	mm  []memory_map.MemoryMapItem
	mu  sync.Mutex
}

var _ process.Process = (*LinuxProcess)(nil)

func closedLogger() *logger.Logger {
	return logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
}

// New creates a new LinuxProcess instance
func New() *LinuxProcess {
	return &LinuxProcess{
		log: closedLogger(),
	}
}

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (*LinuxProcess, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	if _, err := NewProcessFinder().FindProcessByPID(pid); err != nil {
		return err
	}

	procPath := fmt.Sprintf("/proc/%d", pid)

	exe, err := os.Readlink(procPath + "/exe")
	if err != nil {
		return fmt.Errorf("failed to resolve executable of %d: %w", pid, err)
	}

	p.mu.Lock()
	p.pid = pid
	p.exe = memory_map.TrimDeleted(exe)
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened", p.exe)

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Infoln("Closing process")

	p.pid = 0
	p.exe = ""
	p.mm = nil
	p.log = closedLogger()

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	mm, err := memory_map.NewLinuxMemoryMap().ReadMemoryMap(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mu.Lock()
	p.mm = mm
	p.mu.Unlock()
	return nil
}

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isValidAddressInternal(addr)
}

// isValidAddressInternal assumes the mutex is held
func (p *LinuxProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
	if addr <= 0x10000 || addr >= process.MaxUserAddress {
		return false
	}

	return memory_map.IsValidAddress(uint64(addr), p.mm)
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

// MainModule returns the mappings of the target's executable
func (p *LinuxProcess) MainModule() ([]memory_map.MemoryMapItem, error) {
	mm, err := p.GetMemoryMap()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	exe := p.exe
	p.mu.Unlock()

	regions := memory_map.ModuleRegions(mm, exe)
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: %s", process.ErrNoMainModule, exe)
	}
	return regions, nil
}

// Save saves the regions introspection needs to a directory
func (p *LinuxProcess) Save(dirname string) error {
	name := "unknown"
	if info, err := getProcessInfo(p.GetPID()); err == nil {
		name = info.Name
	}

	p.mu.Lock()
	log := p.log
	p.mu.Unlock()

	return process_blob.Save(p, dirname, process_blob.WithProcessName(name), process_blob.WithSaveLogger(log))
}
