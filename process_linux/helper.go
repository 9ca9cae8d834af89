//go:build linux

package process_linux

import (
	"fmt"

	"uescope/process"
)

// OpenProcessByName opens the first process whose name matches
func OpenProcessByName(name string) (*LinuxProcess, error) {
	processes, err := NewProcessFinder().FindProcessByName(name)
	if err != nil {
		return nil, err
	}

	if len(processes) == 0 {
		return nil, fmt.Errorf("name %q: %w", name, process.ErrProcessNotFound)
	}

	return NewWithPID(processes[0].PID)
}

// Open returns a process.Process for pid
func Open(pid process.ProcessID) (process.Process, error) {
	p, err := NewWithPID(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// OpenByName returns a process.Process for the first process called name
func OpenByName(name string) (process.Process, error) {
	p, err := OpenProcessByName(name)
	if err != nil {
		return nil, err
	}
	return p, nil
}
