package uobject_test

import (
	"sync"
	"testing"

	"uescope/anchor"
	"uescope/pod"
	"uescope/process"
	"uescope/uobject"
	"uescope/uobject/uobjecttest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	b      *uobjecttest.Builder
	engine *uobjecttest.Obj
	actor  *uobjecttest.Obj
	pawn   *uobjecttest.Obj
	vector *uobjecttest.Obj
	tick   *uobjecttest.Obj
	pawn0  *uobjecttest.Obj
}

func newFixture(t *testing.T) *fixture {
	b := uobjecttest.New(t)
	f := &fixture{b: b}

	f.engine = b.Package("Engine")
	f.actor = b.Class(f.engine, "Actor", nil)
	f.pawn = b.Class(f.engine, "Pawn", f.actor)

	f.vector = b.ScriptStruct(f.actor, "Vector", 12)
	b.Property(f.vector, uobject.TagFloatProperty, "X", 0, 4)
	b.Property(f.vector, uobject.TagFloatProperty, "Y", 4, 4)
	b.Property(f.vector, uobject.TagFloatProperty, "Z", 8, 4)

	b.Property(f.actor, uobject.TagIntProperty, "Health", 0x58, 4)
	b.Property(f.actor, uobject.TagBoolProperty, "bHidden", 0x5C, 4, uobjecttest.WithBitMask(0x2))
	b.Property(f.actor, uobject.TagStructProperty, "Location", 0x60, 12, uobjecttest.WithStruct(f.vector))
	b.Property(f.actor, uobject.TagIntProperty, "Padding", 0x6C, 0)

	f.tick = b.Function(f.actor, "Tick", uobject.FunctionEvent|uobject.FunctionPublic)
	b.Property(f.tick, uobject.TagFloatProperty, "DeltaTime", 0, 4, uobjecttest.WithFlags(uobject.PropertyParm))
	b.Property(f.tick, uobject.TagBoolProperty, "ReturnValue", 4, 4, uobjecttest.WithFlags(uobject.PropertyParm|uobject.PropertyReturnParm|uobject.PropertyOutParm))
	b.Property(f.tick, uobject.TagIntProperty, "Local", 8, 4)

	b.Property(f.pawn, uobject.TagClassProperty, "ControllerClass", 0x70, 8,
		uobjecttest.WithPropertyClass(b.Core(uobject.TagClass)), uobjecttest.WithMetaClass(f.actor))

	f.pawn0 = b.Instance(f.pawn, f.engine, "Pawn_0")
	return f
}

func TestNames(t *testing.T) {
	img := newFixture(t).b.Build()
	rt := img.Runtime(t)

	names, err := rt.Names()
	require.NoError(t, err)
	assert.Greater(t, names.Len(), 2)

	for id, want := range []string{"None", "ByteProperty"} {
		got, err := rt.Name(uobject.NameRef{EntryID: int32(id)})
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = rt.Name(uobject.NameRef{EntryID: int32(names.Len())})
	assert.ErrorIs(t, err, uobject.ErrIndexOutOfRange)
	_, err = rt.Name(uobject.NameRef{EntryID: -1})
	assert.ErrorIs(t, err, uobject.ErrIndexOutOfRange)
}

func TestNameIgnoresInstanceNumber(t *testing.T) {
	f := newFixture(t)
	img := f.b.Build()
	rt := img.Runtime(t)

	ref := f.b.NameRef("Actor")
	ref.InstanceNumber = 7
	name, err := rt.Name(ref)
	require.NoError(t, err)
	assert.Equal(t, "Actor", name)
}

func TestNameCache(t *testing.T) {
	f := newFixture(t)
	img := f.b.Build()
	cached := img.Runtime(t)
	uncached := img.Runtime(t, uobject.WithNameCache(0))

	ref := f.b.NameRef("Pawn")
	for _, rt := range []*uobject.Runtime{cached, uncached} {
		name, err := rt.Name(ref)
		require.NoError(t, err)
		assert.Equal(t, "Pawn", name)
	}

	// empty the name table
	require.NoError(t, pod.PutT(img.Dump.Blobs[uobjecttest.ModuleBase], uobjecttest.GNamesOffset+8, int32(0)))

	name, err := cached.Name(ref)
	require.NoError(t, err)
	assert.Equal(t, "Pawn", name)

	_, err = uncached.Name(ref)
	assert.ErrorIs(t, err, uobject.ErrIndexOutOfRange)
}

func TestObjectsSkipsEmptySlots(t *testing.T) {
	f := newFixture(t)
	img := f.b.Build(2, 5)
	rt := img.Runtime(t)

	objects, err := rt.Objects()
	require.NoError(t, err)

	var slots []int
	for i, obj := range objects {
		assert.Equal(t, int32(i), obj.InternalIndex())
		slots = append(slots, i)
	}
	assert.Len(t, slots, len(img.Slots))
	assert.NotContains(t, slots, 2)
	assert.NotContains(t, slots, 5)

	table, err := rt.ObjectTable()
	require.NoError(t, err)
	assert.Equal(t, len(img.Slots)+2, table.Len())
}

func TestPathAndFullNames(t *testing.T) {
	f := newFixture(t)
	img := f.b.Build()
	rt := img.Runtime(t)

	cases := []struct {
		obj      *uobjecttest.Obj
		path     string
		fullName string
	}{
		{f.b.Core(uobject.TagObject), "Core::Object", "Class Core::Object"},
		{f.b.CorePackage, "Core", "Package Core"},
		{f.actor, "Engine::Actor", "Class Engine::Actor"},
		{f.tick, "Engine::Actor::Tick", "Function Engine::Actor::Tick"},
		{f.vector, "Engine::Actor::Vector", "ScriptStruct Engine::Actor::Vector"},
		{f.pawn0, "Engine::Pawn_0", "Pawn Engine::Pawn_0"},
	}

	for _, tc := range cases {
		obj, err := rt.ObjectAt(tc.obj.Addr)
		require.NoError(t, err)

		path, err := obj.PathName()
		require.NoError(t, err)
		assert.Equal(t, tc.path, path)

		full, err := obj.FullName()
		require.NoError(t, err)
		assert.Equal(t, tc.fullName, full)
		assert.Equal(t, tc.fullName, obj.String())
	}
}

func TestOuterOfRootIsNull(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	pkg, err := rt.ObjectAt(f.engine.Addr)
	require.NoError(t, err)
	_, err = pkg.Outer()
	assert.ErrorIs(t, err, uobject.ErrNullPointer)
}

func TestIsAAndCast(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	tick, err := rt.ObjectAt(f.tick.Addr)
	require.NoError(t, err)

	assert.True(t, uobject.IsA[uobject.Function](tick))
	assert.True(t, uobject.IsA[uobject.Struct](tick))
	assert.True(t, uobject.IsA[uobject.Field](tick))
	assert.True(t, uobject.IsA[uobject.Object](tick))
	assert.False(t, uobject.IsA[uobject.Class](tick))
	assert.False(t, uobject.IsA[uobject.Property](tick))

	fn, ok := uobject.Cast[uobject.Function](tick)
	require.True(t, ok)
	assert.Equal(t, tick.Address(), fn.Address())
	assert.True(t, fn.FunctionFlags().Has(uobject.FunctionEvent))

	_, ok = uobject.Cast[uobject.Class](tick)
	assert.False(t, ok)

	// an instance is only an Object
	pawn0, err := rt.ObjectAt(f.pawn0.Addr)
	require.NoError(t, err)
	assert.False(t, uobject.IsA[uobject.Field](pawn0))
	assert.False(t, uobject.IsA[uobject.Class](pawn0))
}

func TestCastToAncestorKeepsSnapshot(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	actor, ok := rt.ClassByFullName("Class Engine::Actor")
	require.True(t, ok)

	s, ok := uobject.Cast[uobject.Struct](actor)
	require.True(t, ok)
	assert.Same(t, actor.Record(), s.Record())
}

func TestClassPropertyIsObjectProperty(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	pawn, ok := rt.ClassByFullName("Class Engine::Pawn")
	require.True(t, ok)

	var props []uobject.Property
	for p, err := range pawn.Properties() {
		require.NoError(t, err)
		props = append(props, p)
	}
	require.Len(t, props, 1)

	op, ok := uobject.Cast[uobject.ObjectProperty](props[0])
	require.True(t, ok)
	cls, err := op.PropertyClass()
	require.NoError(t, err)
	name, err := cls.Name()
	require.NoError(t, err)
	assert.Equal(t, "Class", name)

	cp, ok := uobject.Cast[uobject.ClassProperty](props[0])
	require.True(t, ok)
	meta, err := cp.MetaClass()
	require.NoError(t, err)
	assert.Equal(t, f.actor.Addr, meta.Address())
}

func TestLookupCaches(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	c, ok := rt.ClassByFullName("Class Engine::Pawn")
	require.True(t, ok)
	assert.Equal(t, f.pawn.Addr, c.Address())

	fn, ok := rt.FunctionByFullName("Function Engine::Actor::Tick")
	require.True(t, ok)
	assert.Equal(t, f.tick.Addr, fn.Address())

	s, ok := rt.StructByFullName("ScriptStruct Engine::Actor::Vector")
	require.True(t, ok)
	assert.Equal(t, f.vector.Addr, s.Address())
	assert.Equal(t, int32(12), s.PropertySize())

	_, ok = rt.ClassByFullName("Class Engine::Missing")
	assert.False(t, ok)
	_, ok = rt.FunctionByFullName("Class Engine::Actor")
	assert.False(t, ok)
	_, ok = rt.StructByFullName("Function Engine::Actor::Tick")
	assert.False(t, ok)

	classes := rt.ClassNames()
	assert.IsIncreasing(t, classes)
	assert.Contains(t, classes, "Class Core::Object")
	assert.Contains(t, classes, "Class Core::Package")
	assert.NotContains(t, classes, "ClassProperty Engine::Pawn::ControllerClass")

	assert.Equal(t, []string{"Function Engine::Actor::Tick"}, rt.FunctionNames())
	assert.Equal(t, []string{"ScriptStruct Engine::Actor::Vector"}, rt.StructNames())
	assert.NoError(t, rt.CacheErr())
}

func TestLookupCachesAreBuiltOnce(t *testing.T) {
	f := newFixture(t)
	renamed := f.b.NameRef("Renamed")
	img := f.b.Build()
	rt := img.Runtime(t)

	_, ok := rt.ClassByFullName("Class Engine::Actor")
	require.True(t, ok)

	heap := img.Dump.Blobs[uobjecttest.HeapBase]
	off := int(f.actor.Addr-uobjecttest.HeapBase) + int(f.b.Layout().ObjectName)
	require.NoError(t, pod.PutT(heap, off, renamed))

	_, ok = rt.ClassByFullName("Class Engine::Renamed")
	assert.False(t, ok)

	c, ok := rt.ClassByFullName("Class Engine::Actor")
	require.True(t, ok)
	name, err := c.Name()
	require.NoError(t, err)
	assert.Equal(t, "Renamed", name)
}

func TestLookupCachesConcurrentFirstUse(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	tick, err := rt.ObjectAt(f.tick.Addr)
	require.NoError(t, err)

	type result struct {
		pawn      process.ProcessMemoryAddress
		found     bool
		functions []string
		structs   []string
		isFunc    bool
		isClass   bool
	}

	const workers = 16
	results := make([]result, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, ok := rt.ClassByFullName("Class Engine::Pawn")
			results[i] = result{
				pawn:      c.Address(),
				found:     ok,
				functions: rt.FunctionNames(),
				structs:   rt.StructNames(),
				isFunc:    uobject.IsA[uobject.Function](tick),
				isClass:   uobject.IsA[uobject.Class](tick),
			}
		}()
	}
	wg.Wait()

	for i, r := range results {
		assert.True(t, r.found, "worker %d", i)
		assert.Equal(t, f.pawn.Addr, r.pawn, "worker %d", i)
		assert.Equal(t, []string{"Function Engine::Actor::Tick"}, r.functions, "worker %d", i)
		assert.Equal(t, []string{"ScriptStruct Engine::Actor::Vector"}, r.structs, "worker %d", i)
		assert.True(t, r.isFunc, "worker %d", i)
		assert.False(t, r.isClass, "worker %d", i)
	}
	assert.NoError(t, rt.CacheErr())
}

func TestStaticClass(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	for _, tag := range uobject.Tags() {
		c, ok := rt.StaticClass(tag)
		require.True(t, ok, tag.String())
		assert.Equal(t, f.b.Core(tag).Addr, c.Address(), tag.String())
	}

	_, ok := rt.StaticClass(uobject.TypeTag(-1))
	assert.False(t, ok)
}

func TestSuperclasses(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	pawn, ok := rt.ClassByFullName("Class Engine::Pawn")
	require.True(t, ok)

	var names []string
	for c, err := range pawn.Superclasses() {
		require.NoError(t, err)
		name, err := c.Name()
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"Pawn", "Actor", "Object"}, names)

	super, err := pawn.SuperStruct()
	require.NoError(t, err)
	assert.Equal(t, f.actor.Addr, super.Address())
}

func TestChildrenAndProperties(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	actor, ok := rt.ClassByFullName("Class Engine::Actor")
	require.True(t, ok)

	var children []string
	for child, err := range actor.Children() {
		require.NoError(t, err)
		name, err := child.Name()
		require.NoError(t, err)
		children = append(children, name)
	}
	assert.Equal(t, []string{"Vector", "Health", "bHidden", "Location", "Padding", "Tick"}, children)

	var props []string
	for p, err := range actor.Properties() {
		require.NoError(t, err)
		name, err := p.Name()
		require.NoError(t, err)
		props = append(props, name)
	}
	assert.Equal(t, []string{"Health", "bHidden", "Location"}, props)

	var structs, functions int
	for _, err := range actor.ScriptStructs() {
		require.NoError(t, err)
		structs++
	}
	for _, err := range actor.Functions() {
		require.NoError(t, err)
		functions++
	}
	assert.Equal(t, 1, structs)
	assert.Equal(t, 1, functions)

	// iterators restart from the head
	var again int
	for range actor.Children() {
		again++
	}
	assert.Equal(t, len(children), again)
}

func TestPropertyPayloads(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	actor, ok := rt.ClassByFullName("Class Engine::Actor")
	require.True(t, ok)

	byName := map[string]uobject.Property{}
	for p, err := range actor.Properties() {
		require.NoError(t, err)
		name, err := p.Name()
		require.NoError(t, err)
		byName[name] = p
	}

	hidden, ok := uobject.Cast[uobject.BoolProperty](byName["bHidden"])
	require.True(t, ok)
	assert.Equal(t, uint64(0x2), hidden.BitMask())
	assert.Equal(t, int32(0x5C), hidden.Offset())
	assert.Equal(t, int32(1), hidden.ArrayDim())

	location, ok := uobject.Cast[uobject.StructProperty](byName["Location"])
	require.True(t, ok)
	s, err := location.Struct()
	require.NoError(t, err)
	assert.Equal(t, f.vector.Addr, s.Address())
	assert.Equal(t, int32(12), location.ElementSize())

	_, ok = uobject.Cast[uobject.StructProperty](byName["Health"])
	assert.False(t, ok)
}

func TestFunctionParams(t *testing.T) {
	f := newFixture(t)
	rt := f.b.Build().Runtime(t)

	tick, ok := rt.FunctionByFullName("Function Engine::Actor::Tick")
	require.True(t, ok)

	var params []string
	for p, err := range tick.Params() {
		require.NoError(t, err)
		name, err := p.Name()
		require.NoError(t, err)
		params = append(params, name)
	}
	assert.Equal(t, []string{"DeltaTime"}, params)

	ret, ok, err := tick.ReturnValue()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(4), ret.Offset())
	assert.True(t, ret.PropertyFlags().Has(uobject.PropertyReturnParm))
}

func TestReturnValueMustBeParameter(t *testing.T) {
	f := newFixture(t)
	fn := f.b.Function(f.actor, "GetSpeed", uobject.FunctionNative)
	f.b.Property(fn, uobject.TagIntProperty, "Stale", 0, 4, uobjecttest.WithFlags(uobject.PropertyReturnParm))
	f.b.Property(fn, uobject.TagFloatProperty, "ReturnValue", 4, 4, uobjecttest.WithFlags(uobject.PropertyParm|uobject.PropertyReturnParm))
	rt := f.b.Build().Runtime(t)

	getSpeed, ok := rt.FunctionByFullName("Function Engine::Actor::GetSpeed")
	require.True(t, ok)

	ret, ok, err := getSpeed.ReturnValue()
	require.NoError(t, err)
	require.True(t, ok)
	name, err := ret.Name()
	require.NoError(t, err)
	assert.Equal(t, "ReturnValue", name)
	assert.Equal(t, int32(4), ret.Offset())

	for p, err := range getSpeed.Params() {
		require.NoError(t, err)
		name, err := p.Name()
		require.NoError(t, err)
		assert.Fail(t, "unexpected parameter", name)
	}
}

func TestFunctionWithoutReturnValue(t *testing.T) {
	f := newFixture(t)
	fn := f.b.Function(f.actor, "Destroy", uobject.FunctionNative)
	fn.SetNative(0x117)
	rt := f.b.Build().Runtime(t)

	destroy, ok := rt.FunctionByFullName("Function Engine::Actor::Destroy")
	require.True(t, ok)
	assert.Equal(t, uint16(0x117), destroy.Native())

	_, ok, err := destroy.ReturnValue()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnumNames(t *testing.T) {
	f := newFixture(t)
	role := f.b.Enum(f.actor, "ENetRole", "ROLE_None", "ROLE_SimulatedProxy", "ROLE_Authority")
	f.b.Property(f.actor, uobject.TagByteProperty, "Role", 0x80, 1, uobjecttest.WithEnum(role))
	rt := f.b.Build().Runtime(t)

	actor, ok := rt.ClassByFullName("Class Engine::Actor")
	require.True(t, ok)

	var prop uobject.ByteProperty
	for p, err := range actor.Properties() {
		require.NoError(t, err)
		if bp, ok := uobject.Cast[uobject.ByteProperty](p); ok {
			prop = bp
		}
	}
	require.True(t, prop.Valid())

	enum, err := prop.Enum()
	require.NoError(t, err)
	names, err := enum.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_None", "ROLE_SimulatedProxy", "ROLE_Authority"}, names)
}

func TestCyclicSuperChainIsBounded(t *testing.T) {
	f := newFixture(t)
	a := f.b.Class(f.engine, "A", nil)
	c := f.b.Class(f.engine, "B", a)
	a.SetSuper(c)
	inst := f.b.Instance(a, f.engine, "A_0")
	rt := f.b.Build().Runtime(t)

	cls, ok := rt.ClassByFullName("Class Engine::A")
	require.True(t, ok)

	var n int
	var last error
	for _, err := range cls.Superclasses() {
		if err != nil {
			last = err
			break
		}
		n++
	}
	assert.ErrorIs(t, last, uobject.ErrChainTooLong)
	assert.Equal(t, uobject.MaxChainLength, n)

	obj, err := rt.ObjectAt(inst.Addr)
	require.NoError(t, err)
	assert.False(t, uobject.IsA[uobject.Field](obj))
}

func TestCyclicOuterChainIsBounded(t *testing.T) {
	f := newFixture(t)
	x := f.b.Instance(f.actor, nil, "X")
	y := f.b.Instance(f.actor, x, "Y")
	x.SetOuter(y)
	rt := f.b.Build().Runtime(t)

	obj, err := rt.ObjectAt(x.Addr)
	require.NoError(t, err)
	_, err = obj.PathName()
	assert.ErrorIs(t, err, uobject.ErrChainTooLong)

	// the cache build skips what it cannot name
	_, ok := rt.ClassByFullName("Class Engine::Actor")
	assert.True(t, ok)
}

func TestObjectTableUnreadable(t *testing.T) {
	f := newFixture(t)
	img := f.b.Build()
	rt, err := uobject.NewRuntime(img.Dump, anchor.Anchors{GNames: img.Anchors.GNames, GObjects: 0x1000})
	require.NoError(t, err)

	_, err = rt.Objects()
	assert.Error(t, err)

	_, ok := rt.ClassByFullName("Class Core::Object")
	assert.False(t, ok)
	assert.Error(t, rt.CacheErr())
	assert.Empty(t, rt.ClassNames())
}

func TestResolveAndIntrospect(t *testing.T) {
	img := newFixture(t).b.Build()

	l := anchor.NewLocator(img.Dump)
	anchors, err := l.Resolve()
	require.NoError(t, err)
	assert.Equal(t, img.Anchors, anchors)
	require.NoError(t, l.Verify(anchors))

	rt, err := uobject.NewRuntime(img.Dump, anchors)
	require.NoError(t, err)

	fn, ok := rt.FunctionByFullName("Function Engine::Actor::Tick")
	require.True(t, ok)
	outer, err := fn.Outer()
	require.NoError(t, err)
	name, err := outer.Name()
	require.NoError(t, err)
	assert.Equal(t, "Actor", name)
}
