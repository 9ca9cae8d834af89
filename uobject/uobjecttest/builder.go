// Package uobjecttest assembles synthetic target images for tests: a heap
// holding the name table, the object table and object records, and a main
// image holding the two table headers where the anchor locator expects them.
package uobjecttest

import (
	"testing"

	"uescope/anchor"
	"uescope/pod"
	"uescope/process"
	"uescope/process/memory_map"
	"uescope/process_blob"
	"uescope/uobject"

	"github.com/stretchr/testify/require"
)

const (
	HeapBase   = 0x10000000
	ModuleBase = 0x400000
	ModulePath = "/opt/game/Binaries/Game"

	// GNamesOffset is where the name table header sits in the main image
	GNamesOffset = 0x100

	// MaxNames is the capacity of the name chunk
	MaxNames = 0x400

	moduleSize = 0x1000
	minHeap    = 2 * memory_map.PageSize
)

// Obj is one object record in the image
type Obj struct {
	b     *Builder
	Addr  process.ProcessMemoryAddress
	Tag   uobject.TypeTag
	Index int
	Name  string

	lastChild *Obj
}

// Builder lays out an image. Every core class is created up front, so
// StaticClass resolves for every tag.
type Builder struct {
	tb     testing.TB
	layout *uobject.Layout

	heap    []byte
	names   []process.ProcessMemoryAddress
	nameIDs map[string]int32
	chunk   process.ProcessMemoryAddress

	objects []*Obj
	core    map[uobject.TypeTag]*Obj
	built   bool

	// CorePackage is the package holding the core classes
	CorePackage *Obj
	// PackageClass is the class of every package
	PackageClass *Obj
}

// New starts an image with the default layout
func New(tb testing.TB) *Builder {
	tb.Helper()
	b := &Builder{
		tb:      tb,
		layout:  uobject.DefaultLayout(),
		nameIDs: make(map[string]int32),
		core:    make(map[uobject.TypeTag]*Obj),
	}

	// the first two entries are packed back to back so the name pattern matches
	b.name("None")
	b.name("ByteProperty")
	b.chunk = b.alloc(MaxNames*process.PointerSize, 8)

	classClass := b.object(uobject.TagClass, "Class", nil, nil)
	classClass.setPtr(b.layout.ObjectClass, classClass)
	b.core[uobject.TagClass] = classClass

	b.PackageClass = b.object(uobject.TagClass, "Package", nil, classClass)
	b.CorePackage = b.Package(uobject.CorePackage)
	classClass.setPtr(b.layout.ObjectOuter, b.CorePackage)
	b.PackageClass.setPtr(b.layout.ObjectOuter, b.CorePackage)

	for _, tag := range uobject.Tags() {
		if tag == uobject.TagClass {
			continue
		}
		b.core[tag] = b.object(uobject.TagClass, tag.Name(), b.CorePackage, classClass)
	}
	for _, tag := range uobject.Tags() {
		if super, ok := tag.Super(); ok {
			b.core[tag].SetSuper(b.core[super])
		}
	}
	b.PackageClass.SetSuper(b.core[uobject.TagObject])

	return b
}

// Layout is the layout records are written with
func (b *Builder) Layout() *uobject.Layout {
	return b.layout
}

// Core returns the class object of tag
func (b *Builder) Core(tag uobject.TypeTag) *Obj {
	return b.core[tag]
}

func (b *Builder) alloc(size process.ProcessMemorySize, align int) process.ProcessMemoryAddress {
	for len(b.heap)%align != 0 {
		b.heap = append(b.heap, 0)
	}
	addr := process.ProcessMemoryAddress(HeapBase + len(b.heap))
	b.heap = append(b.heap, make([]byte, size)...)
	return addr
}

func put[T any](b *Builder, addr process.ProcessMemoryAddress, v T) {
	b.tb.Helper()
	require.NoError(b.tb, pod.PutT(b.heap, int(addr-HeapBase), v))
}

// name registers s in the name table once and returns its id
func (b *Builder) name(s string) int32 {
	if id, ok := b.nameIDs[s]; ok {
		return id
	}
	require.Less(b.tb, len(b.names), MaxNames, "name chunk is full")

	wide, err := process.EncodeWideString(s)
	require.NoError(b.tb, err)

	addr := b.alloc(process.ProcessMemorySize(int(b.layout.NameEntryName)+len(wide)), 2)
	copy(b.heap[int(addr-HeapBase)+int(b.layout.NameEntryName):], wide)

	id := int32(len(b.names))
	b.names = append(b.names, addr)
	b.nameIDs[s] = id
	return id
}

// NameRef returns the reference for s, registering it if needed
func (b *Builder) NameRef(s string) uobject.NameRef {
	return uobject.NameRef{EntryID: b.name(s)}
}

func (b *Builder) object(tag uobject.TypeTag, name string, outer, class *Obj) *Obj {
	b.tb.Helper()
	require.False(b.tb, b.built, "image already built")

	o := &Obj{
		b:     b,
		Addr:  b.alloc(b.layout.Size(tag), 0x10),
		Tag:   tag,
		Index: len(b.objects),
		Name:  name,
	}
	b.objects = append(b.objects, o)

	put(b, o.Addr+b.layout.ObjectInternalIndex, int32(o.Index))
	put(b, o.Addr+b.layout.ObjectName, b.NameRef(name))
	o.setPtr(b.layout.ObjectOuter, outer)
	o.setPtr(b.layout.ObjectClass, class)
	return o
}

// link appends child to the children list of owner
func (b *Builder) link(owner, child *Obj) {
	if owner.lastChild == nil {
		owner.setPtr(b.layout.StructChildren, child)
	} else {
		owner.lastChild.setPtr(b.layout.FieldNext, child)
	}
	owner.lastChild = child
}

// Package adds a root package
func (b *Builder) Package(name string) *Obj {
	return b.object(uobject.TagObject, name, nil, b.PackageClass)
}

// Class adds a class to pkg deriving from super, or from Core.Object when super is nil
func (b *Builder) Class(pkg *Obj, name string, super *Obj) *Obj {
	o := b.object(uobject.TagClass, name, pkg, b.core[uobject.TagClass])
	if super == nil {
		super = b.core[uobject.TagObject]
	}
	o.SetSuper(super)
	return o
}

// ScriptStruct adds a struct declared inside outer. Structs declared in a
// class are linked into its children.
func (b *Builder) ScriptStruct(outer *Obj, name string, size int32) *Obj {
	o := b.object(uobject.TagScriptStruct, name, outer, b.core[uobject.TagScriptStruct])
	put(b, o.Addr+b.layout.StructPropertySize, size)
	if outer.Tag.Is(uobject.TagStruct) {
		b.link(outer, o)
	}
	return o
}

// Function adds a function to class
func (b *Builder) Function(class *Obj, name string, flags uobject.FunctionFlags) *Obj {
	o := b.object(uobject.TagFunction, name, class, b.core[uobject.TagFunction])
	put(b, o.Addr+b.layout.FunctionFlags, uint64(flags))
	b.link(class, o)
	return o
}

// Enum adds an enum to outer with the given value names
func (b *Builder) Enum(outer *Obj, name string, values ...string) *Obj {
	o := b.object(uobject.TagEnum, name, outer, b.core[uobject.TagEnum])

	refs := make([]uobject.NameRef, len(values))
	for i, v := range values {
		refs[i] = b.NameRef(v)
	}
	var data process.ProcessMemoryAddress
	if len(refs) > 0 {
		data = b.alloc(process.ProcessMemorySize(8*len(refs)), 8)
		for i, ref := range refs {
			put(b, data+process.ProcessMemoryAddress(8*i), ref)
		}
	}
	put(b, o.Addr+b.layout.EnumNames, header(data, len(refs), len(refs)))

	if outer.Tag.Is(uobject.TagStruct) {
		b.link(outer, o)
	}
	return o
}

// PropertyOption sets a property field
type PropertyOption func(b *Builder, p *Obj)

func WithFlags(flags uobject.PropertyFlags) PropertyOption {
	return func(b *Builder, p *Obj) {
		put(b, p.Addr+b.layout.PropertyFlags, uint64(flags))
	}
}

func WithArrayDim(n int32) PropertyOption {
	return func(b *Builder, p *Obj) {
		put(b, p.Addr+b.layout.PropertyArrayDim, n)
	}
}

func WithBitMask(mask uint64) PropertyOption {
	return func(b *Builder, p *Obj) {
		put(b, p.Addr+b.layout.BoolBitMask, mask)
	}
}

func WithEnum(enum *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.ByteEnum, enum)
	}
}

func WithStruct(s *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.StructStruct, s)
	}
}

func WithSignature(fn *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.DelegateFunction, fn)
	}
}

func WithInner(inner *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.ArrayInner, inner)
	}
}

func WithKeyValue(key, value *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.MapKey, key)
		p.setPtr(b.layout.MapValue, value)
	}
}

func WithPropertyClass(class *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.ObjectPropertyClass, class)
	}
}

func WithMetaClass(class *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.ClassMetaClass, class)
	}
}

func WithInterfaceClass(class *Obj) PropertyOption {
	return func(b *Builder, p *Obj) {
		p.setPtr(b.layout.InterfaceClass, class)
	}
}

// Property adds a property of kind tag to owner's children
func (b *Builder) Property(owner *Obj, tag uobject.TypeTag, name string, offset, elementSize int32, opts ...PropertyOption) *Obj {
	p := b.InnerProperty(owner, tag, name, elementSize, opts...)
	put(b, p.Addr+b.layout.PropertyOffset, offset)
	b.link(owner, p)
	return p
}

// InnerProperty adds a property owned by outer that is not linked into any
// children list, such as the element of an array property
func (b *Builder) InnerProperty(outer *Obj, tag uobject.TypeTag, name string, elementSize int32, opts ...PropertyOption) *Obj {
	b.tb.Helper()
	require.True(b.tb, tag.Is(uobject.TagProperty), "%s is not a property", tag)

	p := b.object(tag, name, outer, b.core[tag])
	put(b, p.Addr+b.layout.PropertyArrayDim, int32(1))
	put(b, p.Addr+b.layout.PropertyElementSize, elementSize)
	for _, opt := range opts {
		opt(b, p)
	}
	return p
}

// Instance adds a plain object of class
func (b *Builder) Instance(class, outer *Obj, name string) *Obj {
	return b.object(uobject.TagObject, name, outer, class)
}

// SetSuper points the struct's super link at super
func (o *Obj) SetSuper(super *Obj) {
	o.setPtr(o.b.layout.StructSuper, super)
}

// SetOuter points the object's outer link at outer
func (o *Obj) SetOuter(outer *Obj) {
	o.setPtr(o.b.layout.ObjectOuter, outer)
}

// SetFlags sets the object flags
func (o *Obj) SetFlags(flags uobject.ObjectFlags) {
	put(o.b, o.Addr+o.b.layout.ObjectFlags, uint64(flags))
}

// SetNative sets a function's native index
func (o *Obj) SetNative(index uint16) {
	put(o.b, o.Addr+o.b.layout.FunctionNative, index)
}

func (o *Obj) setPtr(off uobject.Offset, target *Obj) {
	var v uint64
	if target != nil {
		v = uint64(target.Addr)
	}
	put(o.b, o.Addr+off, v)
}

// Image is a finished synthetic target
type Image struct {
	Dump    *process_blob.ProcessDump
	Anchors anchor.Anchors
	// Slots maps each object to its object table slot
	Slots map[*Obj]int
}

// Build writes the name chunk, the object table and both table headers.
// holes lists ascending object table slots to leave empty.
func (b *Builder) Build(holes ...int) *Image {
	b.tb.Helper()
	require.False(b.tb, b.built, "image already built")
	b.built = true

	for i, entry := range b.names {
		put(b, b.chunk+process.ProcessMemoryAddress(8*i), uint64(entry))
	}

	slots := make(map[*Obj]int, len(b.objects))
	var table []uint64
	for _, o := range b.objects {
		for len(holes) > 0 && holes[0] == len(table) {
			table = append(table, 0)
			holes = holes[1:]
		}
		slots[o] = len(table)
		put(b, o.Addr+b.layout.ObjectInternalIndex, int32(len(table)))
		table = append(table, uint64(o.Addr))
	}

	objects := b.alloc(process.ProcessMemorySize(8*len(table)), 8)
	for i, v := range table {
		put(b, objects+process.ProcessMemoryAddress(8*i), v)
	}

	heapSize := max(minHeap, (len(b.heap)+memory_map.PageSize-1)/memory_map.PageSize*memory_map.PageSize)
	heap := make([]byte, heapSize)
	copy(heap, b.heap)

	module := make([]byte, moduleSize)
	gnames := process.ProcessMemoryAddress(ModuleBase + GNamesOffset)
	gobjects := gnames + anchor.ObjectTableOffset
	require.NoError(b.tb, pod.PutT(module, GNamesOffset, header(b.chunk, len(b.names), MaxNames)))
	require.NoError(b.tb, pod.PutT(module, GNamesOffset+anchor.ObjectTableOffset, header(objects, len(table), len(table))))

	dump := process_blob.NewProcessDump()
	dump.Name = "Game"
	dump.Module = ModulePath
	require.NoError(b.tb, dump.AddRegion(memory_map.MemoryMapItem{Address: ModuleBase, Perms: "rw-p", Path: ModulePath}, module))
	require.NoError(b.tb, dump.AddRegion(memory_map.MemoryMapItem{Address: HeapBase, Perms: "rw-p"}, heap))

	return &Image{
		Dump:    dump,
		Anchors: anchor.Anchors{GNames: gnames, GObjects: gobjects},
		Slots:   slots,
	}
}

type arrayHeader struct {
	Data     uint64
	Num, Max int32
}

func header(data process.ProcessMemoryAddress, num, capacity int) arrayHeader {
	return arrayHeader{Data: uint64(data), Num: int32(num), Max: int32(capacity)}
}

// Runtime builds a runtime over the image
func (img *Image) Runtime(tb testing.TB, opts ...uobject.Option) *uobject.Runtime {
	tb.Helper()
	rt, err := uobject.NewRuntime(img.Dump, img.Anchors, opts...)
	require.NoError(tb, err)
	return rt
}
