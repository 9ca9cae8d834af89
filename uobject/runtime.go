// Package uobject reads the target's object model: the name table, the
// object table and typed views of the records they point at.
//
// Every view is a snapshot. Memory is only touched when a view is created
// or when a pointer field is followed, always through a process.MemoryReader.
package uobject

import (
	"fmt"
	"iter"
	"sync"

	"uescope/anchor"
	"uescope/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultNameCacheSize is the number of resolved names kept by default
const DefaultNameCacheSize = 0x4000

// Runtime is the object model of one target
type Runtime struct {
	mem     process.MemoryReader
	anchors anchor.Anchors
	layout  *Layout
	log     *logger.Logger
	names   *lru.Cache[int32, string]

	classes   lookup
	functions lookup
	structs   lookup

	staticOnce sync.Once
	static     [numTags]process.ProcessMemoryAddress
}

type config struct {
	layout    *Layout
	log       *logger.Logger
	nameCache int
}

// Option configures a Runtime
type Option func(*config)

func WithLayout(l *Layout) Option {
	return func(c *config) {
		c.layout = l
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithNameCache sets how many resolved names are kept. Zero disables the cache.
func WithNameCache(size int) Option {
	return func(c *config) {
		c.nameCache = size
	}
}

// NewRuntime creates the object model for the tables at anchors
func NewRuntime(mem process.MemoryReader, anchors anchor.Anchors, opts ...Option) (*Runtime, error) {
	cfg := config{
		layout:    DefaultLayout(),
		nameCache: DefaultNameCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "uobject"))
	}

	if err := cfg.layout.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{
		mem:     mem,
		anchors: anchors,
		layout:  cfg.layout,
		log:     cfg.log,
	}

	if cfg.nameCache > 0 {
		cache, err := lru.New[int32, string](cfg.nameCache)
		if err != nil {
			return nil, fmt.Errorf("name cache: %w", err)
		}
		rt.names = cache
	}

	return rt, nil
}

func (rt *Runtime) Anchors() anchor.Anchors {
	return rt.anchors
}

func (rt *Runtime) Layout() *Layout {
	return rt.layout
}

func (rt *Runtime) Memory() process.MemoryReader {
	return rt.mem
}

// Names reads the current name table header
func (rt *Runtime) Names() (Array[Ptr[NameEntry]], error) {
	table, err := ReadArray[Ptr[NameEntry]](rt.mem, rt.anchors.GNames)
	if err != nil {
		return table, fmt.Errorf("name table: %w", err)
	}
	return table, nil
}

// ObjectTable reads the current object table header
func (rt *Runtime) ObjectTable() (Array[Ptr[Object]], error) {
	table, err := ReadArray[Ptr[Object]](rt.mem, rt.anchors.GObjects)
	if err != nil {
		return table, fmt.Errorf("object table: %w", err)
	}
	return table, nil
}

// Object returns the object in slot i of the object table
func (rt *Runtime) Object(i int) (Object, error) {
	table, err := rt.ObjectTable()
	if err != nil {
		return Object{}, err
	}
	p, err := table.Get(rt.mem, i)
	if err != nil {
		return Object{}, fmt.Errorf("object %d: %w", i, err)
	}
	return load[Object](rt, p.Address())
}

// ObjectAt views the record at addr as an object
func (rt *Runtime) ObjectAt(addr process.ProcessMemoryAddress) (Object, error) {
	return load[Object](rt, addr)
}

// Objects snapshots the object table and yields every live object with its
// slot. Empty slots and unreadable records are skipped.
func (rt *Runtime) Objects() (iter.Seq2[int, Object], error) {
	table, err := rt.ObjectTable()
	if err != nil {
		return nil, err
	}
	ptrs, err := table.ReadAll(rt.mem)
	if err != nil {
		return nil, fmt.Errorf("object table entries: %w", err)
	}

	return func(yield func(int, Object) bool) {
		for i, p := range ptrs {
			if p.IsNull() {
				continue
			}
			obj, err := load[Object](rt, p.Address())
			if err != nil {
				rt.log.Debugln("Skipping object", i, err)
				continue
			}
			if !yield(i, obj) {
				return
			}
		}
	}, nil
}
