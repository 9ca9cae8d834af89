// Package search scans target memory for byte patterns one region at a time
package search

import (
	"fmt"
	"runtime"

	"uescope/process"
	"uescope/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize bounds how much of a region is held in memory at once
const DefaultChunkSize = 4 << 20

// Scanner holds configuration for pattern scans
type Scanner struct {
	MaxDOP    int
	ChunkSize int
	Filter    func(memory_map.MemoryMapItem) bool
	log       *logger.Logger
}

// Option is a function that configures a Scanner
type Option func(*Scanner)

// WithMaxDOP limits how many regions are scanned concurrently
func WithMaxDOP(maxdop int) Option {
	return func(s *Scanner) {
		s.MaxDOP = maxdop
	}
}

func WithChunkSize(size int) Option {
	return func(s *Scanner) {
		s.ChunkSize = size
	}
}

// WithRegionFilter replaces the default heap region filter used by Regions
func WithRegionFilter(filter func(memory_map.MemoryMapItem) bool) Option {
	return func(s *Scanner) {
		s.Filter = filter
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// New creates a Scanner
func New(options ...Option) *Scanner {
	s := &Scanner{
		MaxDOP:    runtime.NumCPU(),
		ChunkSize: DefaultChunkSize,
	}

	for _, opt := range options {
		opt(s)
	}

	if s.MaxDOP < 1 {
		s.MaxDOP = 1
	}
	if s.log == nil {
		s.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scanner"))
	}

	return s
}

// Regions refreshes the target's memory map and returns the regions a scan
// should visit, in address order. The result is never cached.
func (s *Scanner) Regions(proc process.Process) ([]memory_map.MemoryMapItem, error) {
	if err := proc.UpdateMemoryMap(); err != nil {
		return nil, fmt.Errorf("failed to update memory map: %w", err)
	}

	mm, err := proc.GetMemoryMap()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory map: %w", err)
	}

	if s.Filter == nil {
		return memory_map.Scannable(mm), nil
	}

	memory_map.Sort(mm)
	var regions []memory_map.MemoryMapItem
	for _, item := range mm {
		if s.Filter(item) {
			regions = append(regions, item)
		}
	}
	return regions, nil
}

// scanRegion reads region in overlapping chunks and reports match offsets to
// visit until visit returns false. A chunk that cannot be read ends the
// region, since a region may be unmapped while it is being scanned.
func (s *Scanner) scanRegion(mem process.MemoryReader, region memory_map.MemoryMapItem, aob process.AOB, visit func(process.ProcessMemoryAddress) bool) {
	n := uint64(aob.Len())
	size := uint64(region.Size)
	if n == 0 || n > size {
		return
	}

	chunk := uint64(s.ChunkSize)
	if chunk < n {
		chunk = n
	}

	for start := uint64(0); start+n <= size; start += chunk {
		end := min(start+chunk+n-1, size)

		data, err := mem.ReadMemory(process.ProcessMemoryAddress(region.Address+start), process.ProcessMemorySize(end-start))
		if err != nil {
			s.log.Debugln("Failed to read memory region at", fmt.Sprintf("%x", region.Address+start), err)
			return
		}

		for _, off := range aob.FindAll(data) {
			// matches starting in the overlap belong to the next chunk
			if uint64(off) >= chunk {
				break
			}
			if !visit(process.ProcessMemoryAddress(region.Address + start + uint64(off))) {
				return
			}
		}
	}
}

// FindInRegion returns the first match of aob that lies entirely inside region
func (s *Scanner) FindInRegion(mem process.MemoryReader, region memory_map.MemoryMapItem, aob process.AOB) (process.ProcessMemoryAddress, bool) {
	var found process.ProcessMemoryAddress
	var ok bool
	s.scanRegion(mem, region, aob, func(addr process.ProcessMemoryAddress) bool {
		found, ok = addr, true
		return false
	})
	return found, ok
}

// FirstPerRegion returns the first match inside each region, in region order.
// Regions are scanned concurrently; regions without a match are omitted.
func (s *Scanner) FirstPerRegion(mem process.MemoryReader, regions []memory_map.MemoryMapItem, aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return nil, process.ErrEmptyPattern
	}

	type hit struct {
		addr process.ProcessMemoryAddress
		ok   bool
	}
	hits := make([]hit, len(regions))

	var g errgroup.Group
	g.SetLimit(s.MaxDOP)
	for i, region := range regions {
		g.Go(func() error {
			addr, ok := s.FindInRegion(mem, region, aob)
			hits[i] = hit{addr, ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []process.ProcessMemoryAddress
	for _, h := range hits {
		if h.ok {
			results = append(results, h.addr)
		}
	}
	return results, nil
}

// FirstInRegions returns the first match in the lowest region that has one
func (s *Scanner) FirstInRegions(mem process.MemoryReader, regions []memory_map.MemoryMapItem, aob process.AOB) (process.ProcessMemoryAddress, bool, error) {
	results, err := s.FirstPerRegion(mem, regions, aob)
	if err != nil || len(results) == 0 {
		return 0, false, err
	}
	return results[0], true, nil
}

// AllInRegions returns every match in every region, in address order
func (s *Scanner) AllInRegions(mem process.MemoryReader, regions []memory_map.MemoryMapItem, aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return nil, process.ErrEmptyPattern
	}

	perRegion := make([][]process.ProcessMemoryAddress, len(regions))

	var g errgroup.Group
	g.SetLimit(s.MaxDOP)
	for i, region := range regions {
		g.Go(func() error {
			s.scanRegion(mem, region, aob, func(addr process.ProcessMemoryAddress) bool {
				perRegion[i] = append(perRegion[i], addr)
				return true
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []process.ProcessMemoryAddress
	for _, r := range perRegion {
		results = append(results, r...)
	}
	return results, nil
}

// First scans the target's current scannable regions for the first match
func (s *Scanner) First(proc process.Process, aob process.AOB) (process.ProcessMemoryAddress, bool, error) {
	regions, err := s.Regions(proc)
	if err != nil {
		return 0, false, err
	}
	s.log.Debugln("Scanning", len(regions), "regions for", aob.Len(), "byte pattern")
	return s.FirstInRegions(proc, regions, aob)
}

// All scans the target's current scannable regions for every match
func (s *Scanner) All(proc process.Process, aob process.AOB) ([]process.ProcessMemoryAddress, error) {
	regions, err := s.Regions(proc)
	if err != nil {
		return nil, err
	}
	results, err := s.AllInRegions(proc, regions, aob)
	if err != nil {
		return nil, err
	}
	s.log.Infoln("Scan complete, found", len(results), "matches")
	return results, nil
}
