// Package anchor locates the name table and object table of a running target.
//
// The name table is found without symbols in three hops. Its first two entries
// are always "None" and "ByteProperty", stored back to back, so the first entry
// can be found by pattern. Something on the heap holds a pointer to that entry
// (the table's chunk of entry pointers), and the main image holds a pointer to
// that chunk (the table's data pointer). The object table sits at a fixed
// distance after the name table in the main image.
package anchor

import (
	"errors"
	"fmt"
	"sync"

	"uescope/process"
	"uescope/search"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	// NameEntryPadding is the number of header bytes in front of every name entry's string
	NameEntryPadding = 0x18

	// ObjectTableOffset is the distance from the name table to the object table
	ObjectTableOffset = 0x48
)

// The first two names every target registers
var firstNames = []string{"None", "ByteProperty"}

var ErrAnchorNotFound = errors.New("anchor not found")

// Anchors are the addresses of the name table and object table array headers
type Anchors struct {
	GNames   process.ProcessMemoryAddress
	GObjects process.ProcessMemoryAddress
}

func (a Anchors) String() string {
	return fmt.Sprintf("GNames=%s GObjects=%s", a.GNames.ToString(), a.GObjects.ToString())
}

// NamePattern returns the pattern matching the first two name entries.
// A match starts at the first entry.
func NamePattern(padding int) (process.AOB, error) {
	var parts []process.AOB
	for _, name := range firstNames {
		wide, err := process.AOBFromWideString(name)
		if err != nil {
			return process.AOB{}, err
		}
		parts = append(parts, process.Wildcards(padding), wide)
	}
	return process.Concat(parts...), nil
}

type config struct {
	padding      int
	objectOffset process.ProcessMemoryAddress
	scanner      *search.Scanner
	log          *logger.Logger
}

// Option configures a Locator
type Option func(*config)

func WithNameEntryPadding(padding int) Option {
	return func(c *config) {
		c.padding = padding
	}
}

func WithObjectTableOffset(offset process.ProcessMemoryAddress) Option {
	return func(c *config) {
		c.objectOffset = offset
	}
}

func WithScanner(s *search.Scanner) Option {
	return func(c *config) {
		c.scanner = s
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Locator resolves the anchors of one target once
type Locator struct {
	proc process.Process
	cfg  config

	once    sync.Once
	anchors Anchors
	err     error
}

// NewLocator creates a Locator for proc
func NewLocator(proc process.Process, opts ...Option) *Locator {
	cfg := config{
		padding:      NameEntryPadding,
		objectOffset: ObjectTableOffset,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "anchor"))
	}
	if cfg.scanner == nil {
		cfg.scanner = search.New(search.WithLogger(cfg.log))
	}

	return &Locator{proc: proc, cfg: cfg}
}

// Resolve runs discovery on first use and returns the same outcome, success or
// failure, on every later call
func (l *Locator) Resolve() (Anchors, error) {
	l.once.Do(func() {
		l.anchors, l.err = l.locate()
		if l.err != nil {
			l.cfg.log.Debugln("Anchor discovery failed:", l.err)
			return
		}
		l.cfg.log.Infoln("Resolved", l.anchors.String())
	})
	return l.anchors, l.err
}

// FirstNameEntry returns the address of the first name entry
func (l *Locator) FirstNameEntry() (process.ProcessMemoryAddress, error) {
	pattern, err := NamePattern(l.cfg.padding)
	if err != nil {
		return 0, err
	}

	entry, ok, err := l.cfg.scanner.First(l.proc, pattern)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: no name entries for %q", ErrAnchorNotFound, firstNames)
	}
	return entry, nil
}

func (l *Locator) locate() (Anchors, error) {
	entry, err := l.FirstNameEntry()
	if err != nil {
		return Anchors{}, err
	}
	l.cfg.log.Debugln("First name entry at", entry.ToString())

	regions, err := l.cfg.scanner.Regions(l.proc)
	if err != nil {
		return Anchors{}, err
	}

	// every heap pointer to the first entry may be the table's chunk
	candidates, err := l.cfg.scanner.FirstPerRegion(l.proc, regions, process.AOBFromAddress(entry))
	if err != nil {
		return Anchors{}, err
	}
	if len(candidates) == 0 {
		return Anchors{}, fmt.Errorf("%w: nothing points at the first name entry %s", ErrAnchorNotFound, entry.ToString())
	}

	module, err := l.proc.MainModule()
	if err != nil {
		return Anchors{}, fmt.Errorf("%w: %w", ErrAnchorNotFound, err)
	}

	for _, candidate := range candidates {
		names, ok, err := l.cfg.scanner.FirstInRegions(l.proc, module, process.AOBFromAddress(candidate))
		if err != nil {
			return Anchors{}, err
		}
		if ok {
			return Anchors{GNames: names, GObjects: names + l.cfg.objectOffset}, nil
		}
		l.cfg.log.Debugln("No reference to candidate", candidate.ToString(), "in the main image")
	}

	return Anchors{}, fmt.Errorf("%w: no candidate among %d is referenced from the main image", ErrAnchorNotFound, len(candidates))
}

var global struct {
	once    sync.Once
	locator *Locator
}

// Resolve resolves the anchors of proc and caches the outcome for the lifetime
// of this process. Later calls return the first outcome whatever proc they pass.
func Resolve(proc process.Process, opts ...Option) (Anchors, error) {
	global.once.Do(func() {
		global.locator = NewLocator(proc, opts...)
	})
	return global.locator.Resolve()
}
