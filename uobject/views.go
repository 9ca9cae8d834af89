package uobject

import (
	"errors"
	"fmt"
	"iter"

	"uescope/process"
)

type Field struct{ Object }

func (Field) StaticTag() TypeTag { return TagField }

// Next returns the following sibling, ErrNullPointer after the last one
func (f Field) Next() (Field, error) {
	return load[Field](f.rt, f.ptr(f.rt.layout.FieldNext))
}

type Struct struct{ Field }

func (Struct) StaticTag() TypeTag { return TagStruct }

// SuperStruct returns the parent struct, ErrNullPointer at the root
func (s Struct) SuperStruct() (Struct, error) {
	return load[Struct](s.rt, s.ptr(s.rt.layout.StructSuper))
}

func (s Struct) PropertySize() int32 {
	return s.i32(s.rt.layout.StructPropertySize)
}

// Children walks the linked list of fields declared directly on s. A read
// failure or an overlong list ends the walk with an error.
func (s Struct) Children() iter.Seq2[Field, error] {
	return func(yield func(Field, error) bool) {
		next := s.ptr(s.rt.layout.StructChildren)
		for range MaxChainLength {
			if next == 0 {
				return
			}
			child, err := load[Field](s.rt, next)
			if err != nil {
				yield(Field{}, err)
				return
			}
			if !yield(child, nil) {
				return
			}
			next = child.ptr(s.rt.layout.FieldNext)
		}
		yield(Field{}, fmt.Errorf("children of %s: %w", s.Address().ToString(), ErrChainTooLong))
	}
}

// Properties yields the children that are properties with a non-zero element size
func (s Struct) Properties() iter.Seq2[Property, error] {
	return func(yield func(Property, error) bool) {
		for child, err := range s.Children() {
			if err != nil {
				yield(Property{}, err)
				return
			}
			p, ok := Cast[Property](child)
			if !ok || p.ElementSize() <= 0 {
				continue
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

type State struct{ Struct }

func (State) StaticTag() TypeTag { return TagState }

type Class struct{ State }

func (Class) StaticTag() TypeTag { return TagClass }

// SuperClass returns the parent class, ErrNullPointer at the root
func (c Class) SuperClass() (Class, error) {
	return load[Class](c.rt, c.ptr(c.rt.layout.StructSuper))
}

// Superclasses yields c and then each ancestor up to the root
func (c Class) Superclasses() iter.Seq2[Class, error] {
	return func(yield func(Class, error) bool) {
		cur := c
		for range MaxChainLength {
			if !yield(cur, nil) {
				return
			}
			super, err := cur.SuperClass()
			if errors.Is(err, ErrNullPointer) {
				return
			}
			if err != nil {
				yield(Class{}, err)
				return
			}
			cur = super
		}
		yield(Class{}, fmt.Errorf("superclasses of %s: %w", c.Address().ToString(), ErrChainTooLong))
	}
}

// ScriptStructs yields the struct types declared inside c
func (c Class) ScriptStructs() iter.Seq2[ScriptStruct, error] {
	return childrenOf[ScriptStruct](c.Struct)
}

// Functions yields the functions declared on c
func (c Class) Functions() iter.Seq2[Function, error] {
	return childrenOf[Function](c.Struct)
}

func childrenOf[T any, P viewPtr[T]](s Struct) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for child, err := range s.Children() {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			v, ok := Cast[T, P](child)
			if !ok {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

type ScriptStruct struct{ Struct }

func (ScriptStruct) StaticTag() TypeTag { return TagScriptStruct }

type Function struct{ Struct }

func (Function) StaticTag() TypeTag { return TagFunction }

func (f Function) FunctionFlags() FunctionFlags {
	return FunctionFlags(f.u64(f.rt.layout.FunctionFlags))
}

// Native is the native function index, zero for script functions
func (f Function) Native() uint16 {
	return f.u16(f.rt.layout.FunctionNative)
}

func (f Function) RepOffset() uint16 {
	return f.u16(f.rt.layout.FunctionRepOffset)
}

func (f Function) FriendlyName() NameRef {
	return f.nameRef(f.rt.layout.FunctionFriendlyName)
}

func (f Function) OperatorPrecedence() uint8 {
	return f.u8(f.rt.layout.FunctionPrecedence)
}

func (f Function) NumParms() uint8 {
	return f.u8(f.rt.layout.FunctionNumParms)
}

func (f Function) ParmsSize() uint16 {
	return f.u16(f.rt.layout.FunctionParmsSize)
}

func (f Function) ReturnValueOffset() uint32 {
	return f.u32(f.rt.layout.FunctionReturnValueOffset)
}

// Func is the address of the native thunk
func (f Function) Func() process.ProcessMemoryAddress {
	return f.ptr(f.rt.layout.FunctionFunc)
}

// Params yields the parameters in declaration order, without the return value
func (f Function) Params() iter.Seq2[Property, error] {
	return func(yield func(Property, error) bool) {
		for p, err := range childrenOf[Property](f.Struct) {
			if err != nil {
				yield(Property{}, err)
				return
			}
			flags := p.PropertyFlags()
			if !flags.Has(PropertyParm) || flags.Has(PropertyReturnParm) {
				continue
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

// ReturnValue returns the first parameter flagged as the return value.
// Children that are not parameters are ignored even when flagged ReturnParm.
func (f Function) ReturnValue() (Property, bool, error) {
	for p, err := range childrenOf[Property](f.Struct) {
		if err != nil {
			return Property{}, false, err
		}
		if p.PropertyFlags().Has(PropertyParm | PropertyReturnParm) {
			return p, true, nil
		}
	}
	return Property{}, false, nil
}

type Enum struct{ Field }

func (Enum) StaticTag() TypeTag { return TagEnum }

// Names resolves the enum's value names in order
func (e Enum) Names() ([]string, error) {
	refs, err := ReadArray[NameRef](e.rec, e.Address()+e.rt.layout.EnumNames)
	if err != nil {
		return nil, err
	}
	values, err := refs.ReadAll(e.rt.mem)
	if err != nil {
		return nil, fmt.Errorf("enum names at %s: %w", e.Address().ToString(), err)
	}

	out := make([]string, 0, len(values))
	for _, ref := range values {
		name, err := e.rt.Name(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

type Const struct{ Field }

func (Const) StaticTag() TypeTag { return TagConst }
