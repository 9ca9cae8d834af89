//go:build windows

package process_windows

import (
	"fmt"
	"sync"
	"unsafe"

	"uescope/process"
	"uescope/process/memory_map"
	"uescope/process_blob"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

const (
	memPrivate = 0x20000
	memMapped  = 0x40000
	memImage   = 0x1000000

	unreadable = windows.PAGE_GUARD | windows.PAGE_NOACCESS | windows.PAGE_NOCACHE
)

// WindowsProcess implements the process.Process interface for Windows systems
type WindowsProcess struct {
	pid    process.ProcessID
	handle windows.Handle
	exe    string
	base   uint64
	size   uint64
	log    *logger.Logger
	mm     []memory_map.MemoryMapItem
	mu     sync.Mutex
}

var _ process.Process = (*WindowsProcess)(nil)

func closedLogger() *logger.Logger {
	return logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))
}

// New creates a new WindowsProcess instance
func New() *WindowsProcess {
	return &WindowsProcess{
		log: closedLogger(),
	}
}

// NewWithPID creates a new WindowsProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (*WindowsProcess, error) {
	p := New()
	if err := p.Open(pid); err != nil {
		return nil, err
	}
	return p, nil
}

// Open returns a process.Process for pid
func Open(pid process.ProcessID) (process.Process, error) {
	p, err := NewWithPID(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *WindowsProcess) Open(pid process.ProcessID) error {
	if _, err := NewProcessFinder().FindProcessByPID(pid); err != nil {
		return err
	}

	handle, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return fmt.Errorf("OpenProcess failed: %w", err)
	}

	exe, base, size, err := mainModuleInfo(handle)
	if err != nil {
		windows.CloseHandle(handle)
		return err
	}

	p.mu.Lock()
	p.pid = pid
	p.handle = handle
	p.exe, p.base, p.size = exe, base, size
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		p.log.Warn("Failed to initialize memory map: ", err)
	}

	p.log.Infoln("Process opened", exe)
	return nil
}

// mainModuleInfo returns the path, base and size of the first module, the executable
func mainModuleInfo(handle windows.Handle) (string, uint64, uint64, error) {
	var module windows.Handle
	var needed uint32
	if err := windows.EnumProcessModules(handle, &module, uint32(unsafe.Sizeof(module)), &needed); err != nil {
		return "", 0, 0, fmt.Errorf("EnumProcessModules failed: %w", err)
	}

	var info windows.ModuleInfo
	if err := windows.GetModuleInformation(handle, module, &info, uint32(unsafe.Sizeof(info))); err != nil {
		return "", 0, 0, fmt.Errorf("GetModuleInformation failed: %w", err)
	}

	name := make([]uint16, windows.MAX_PATH)
	if err := windows.GetModuleFileNameEx(handle, module, &name[0], uint32(len(name))); err != nil {
		return "", 0, 0, fmt.Errorf("GetModuleFileNameEx failed: %w", err)
	}

	return windows.UTF16ToString(name), uint64(info.BaseOfDll), uint64(info.SizeOfImage), nil
}

func (p *WindowsProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != 0 {
		if err := windows.CloseHandle(p.handle); err != nil {
			return fmt.Errorf("CloseHandle failed: %w", err)
		}
		p.handle = 0
	}

	p.pid = 0
	p.mm = nil
	p.log = closedLogger()

	return nil
}

func (p *WindowsProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// permsFromInfo renders a region in /proc/[pid]/maps notation
func permsFromInfo(mbi *windows.MemoryBasicInformation) string {
	perms := []byte("---s")
	if mbi.Type == memPrivate {
		perms[3] = 'p'
	}
	if mbi.Protect&unreadable != 0 {
		return string(perms)
	}

	switch mbi.Protect &^ unreadable {
	case windows.PAGE_READONLY:
		perms[0] = 'r'
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		perms[0], perms[1] = 'r', 'w'
	case windows.PAGE_EXECUTE_READ:
		perms[0], perms[2] = 'r', 'x'
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		perms[0], perms[1], perms[2] = 'r', 'w', 'x'
	}
	return string(perms)
}

// pathFromInfo assigns the pseudo paths that keep non-heap memory out of scans.
// Private memory only counts as heap when it was allocated read/write.
func (p *WindowsProcess) pathFromInfo(mbi *windows.MemoryBasicInformation) string {
	addr := uint64(mbi.BaseAddress)
	switch {
	case addr >= p.base && addr < p.base+p.size:
		return p.exe
	case mbi.Type == memImage:
		return "[image]"
	case mbi.Type == memMapped:
		return "[mapped]"
	case mbi.AllocationProtect != windows.PAGE_READWRITE:
		return "[private]"
	}
	return ""
}

func (p *WindowsProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == 0 {
		return process.ErrProcessNotOpen
	}

	var mm []memory_map.MemoryMapItem
	var mbi windows.MemoryBasicInformation
	for addr := uintptr(0); ; {
		if err := windows.VirtualQueryEx(p.handle, addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			// past the highest user address
			break
		}
		if mbi.RegionSize == 0 {
			break
		}

		if mbi.State == windows.MEM_COMMIT {
			mm = append(mm, memory_map.MemoryMapItem{
				Address: uint64(mbi.BaseAddress),
				Size:    uint(mbi.RegionSize),
				Perms:   permsFromInfo(&mbi),
				Path:    p.pathFromInfo(&mbi),
			})
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}

	p.mm = mm
	return nil
}

func (p *WindowsProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return memory_map.IsValidAddress(uint64(addr), p.mm)
}

func (p *WindowsProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle == 0 {
		return nil, process.ErrProcessNotOpen
	}
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)
	return result, nil
}

// MainModule returns the committed readable regions of the executable image
func (p *WindowsProcess) MainModule() ([]memory_map.MemoryMapItem, error) {
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

func (p *WindowsProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	if err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead); err != nil {
		return nil, fmt.Errorf("ReadProcessMemory at 0x%x failed: %w", addr, err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d", size, bytesRead)
	}

	return buf, nil
}

// Save saves the regions introspection needs to a directory
func (p *WindowsProcess) Save(dirname string) error {
	p.mu.Lock()
	name, log := p.exe, p.log
	p.mu.Unlock()

	return process_blob.Save(p, dirname, process_blob.WithProcessName(name), process_blob.WithSaveLogger(log))
}
