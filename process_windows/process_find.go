//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unsafe"

	"uescope/process"

	"golang.org/x/sys/windows"
)

// WindowsProcessFinder implements process.ProcessFinder over a toolhelp snapshot
type WindowsProcessFinder struct{}

func NewProcessFinder() process.ProcessFinder {
	return &WindowsProcessFinder{}
}

func (f *WindowsProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	all, err := snapshot()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].PID == pid {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("pid %d: %w", pid, process.ErrProcessNotFound)
}

// FindProcessByName matches the executable name with or without ".exe", ignoring case
func (f *WindowsProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	return f.FindProcessByNamePattern("(?i)^" + regexp.QuoteMeta(strings.TrimSuffix(name, ".exe")) + `(\.exe)?$`)
}

func (f *WindowsProcessFinder) FindProcessByNamePattern(pattern string) ([]process.ProcessInfo, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	all, err := snapshot()
	if err != nil {
		return nil, err
	}

	var results []process.ProcessInfo
	for _, info := range all {
		if re.MatchString(info.Name) {
			results = append(results, info)
		}
	}
	return results, nil
}

func snapshot() ([]process.ProcessInfo, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var results []process.ProcessInfo
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		exe := windows.UTF16ToString(entry.ExeFile[:])
		results = append(results, process.ProcessInfo{
			PID:  process.ProcessID(entry.ProcessID),
			PPID: process.ProcessID(entry.ParentProcessID),
			Name: filepath.Base(exe),
			Exe:  exe,
		})
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("Process32Next failed: %w", err)
	}
	return results, nil
}

// OpenByName returns a process.Process for the first process called name
func OpenByName(name string) (process.Process, error) {
	processes, err := NewProcessFinder().FindProcessByName(name)
	if err != nil {
		return nil, err
	}
	if len(processes) == 0 {
		return nil, fmt.Errorf("name %q: %w", name, process.ErrProcessNotFound)
	}
	p, err := NewWithPID(processes[0].PID)
	if err != nil {
		return nil, err
	}
	return p, nil
}
