package uobject

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"uescope/process"
)

// lookup maps full names to object table slots. It is built on first use
// from one pass over the object table and never refreshed.
type lookup struct {
	once  sync.Once
	index map[string]int
	keys  []string
	err   error
}

func (l *lookup) build(rt *Runtime, what string, keep func(Object, string) bool) {
	l.once.Do(func() {
		l.index = make(map[string]int)

		objects, err := rt.Objects()
		if err != nil {
			l.err = err
			rt.log.Warn("Failed to build ", what, " cache: ", err)
			return
		}

		for i, obj := range objects {
			name, err := obj.FullName()
			if err != nil {
				rt.log.Debugln("Skipping object", i, "for", what, "cache:", err)
				continue
			}
			if keep(obj, name) {
				l.index[name] = i
			}
		}

		l.keys = slices.Sorted(maps.Keys(l.index))
		rt.log.Infoln("Built", what, "cache with", len(l.index), "entries")
	})
}

func (l *lookup) slot(key string) (int, bool) {
	i, ok := l.index[key]
	return i, ok
}

func byName[T any, P viewPtr[T]](rt *Runtime, l *lookup, key string) (T, bool) {
	var zero T
	i, ok := l.slot(key)
	if !ok {
		return zero, false
	}

	obj, err := rt.Object(i)
	if err != nil {
		rt.log.Debugln("Cached slot", i, "for", key, "is gone:", err)
		return zero, false
	}

	v, err := load[T, P](rt, obj.Address())
	if err != nil {
		rt.log.Debugln("Cached slot", i, "for", key, "is unreadable:", err)
		return zero, false
	}
	return v, true
}

// classPrefix starts the full name of every class object. The space keeps
// objects of classes like ClassProperty out of the class cache.
const classPrefix = "Class "

func (rt *Runtime) classCache() *lookup {
	rt.classes.build(rt, "class", func(_ Object, name string) bool {
		return strings.HasPrefix(name, classPrefix)
	})
	return &rt.classes
}

func (rt *Runtime) functionCache() *lookup {
	rt.functions.build(rt, "function", func(obj Object, _ string) bool {
		return IsA[Function](obj)
	})
	return &rt.functions
}

func (rt *Runtime) structCache() *lookup {
	rt.structs.build(rt, "struct", func(obj Object, _ string) bool {
		return IsA[ScriptStruct](obj)
	})
	return &rt.structs
}

// ClassByFullName looks up a class by its full name, e.g. "Class Core::Object"
func (rt *Runtime) ClassByFullName(name string) (Class, bool) {
	return byName[Class](rt, rt.classCache(), name)
}

// FunctionByFullName looks up a function, e.g. "Function Engine::Actor::Tick"
func (rt *Runtime) FunctionByFullName(name string) (Function, bool) {
	return byName[Function](rt, rt.functionCache(), name)
}

// StructByFullName looks up a script struct, e.g. "ScriptStruct Core::Object::Vector"
func (rt *Runtime) StructByFullName(name string) (ScriptStruct, bool) {
	return byName[ScriptStruct](rt, rt.structCache(), name)
}

// ClassNames returns the class cache keys in order
func (rt *Runtime) ClassNames() []string {
	return slices.Clone(rt.classCache().keys)
}

func (rt *Runtime) FunctionNames() []string {
	return slices.Clone(rt.functionCache().keys)
}

func (rt *Runtime) StructNames() []string {
	return slices.Clone(rt.structCache().keys)
}

// CacheErr builds the caches and reports why they are empty, if they are
func (rt *Runtime) CacheErr() error {
	for _, l := range []*lookup{rt.classCache(), rt.functionCache(), rt.structCache()} {
		if l.err != nil {
			return l.err
		}
	}
	return nil
}

// StaticClass returns the class of tag, resolved once through the class cache
func (rt *Runtime) StaticClass(tag TypeTag) (Class, bool) {
	addr := rt.staticClass(tag)
	if addr == 0 {
		return Class{}, false
	}
	c, err := load[Class](rt, addr)
	if err != nil {
		return Class{}, false
	}
	return c, true
}

func (rt *Runtime) staticClass(tag TypeTag) process.ProcessMemoryAddress {
	if !tag.Valid() {
		return 0
	}

	rt.staticOnce.Do(func() {
		for _, t := range Tags() {
			if c, ok := rt.ClassByFullName(t.FullName()); ok {
				rt.static[t] = c.Address()
			} else {
				rt.log.Debugln("No class for", t.FullName())
			}
		}
	})

	return rt.static[tag]
}
