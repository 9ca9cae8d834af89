// Package reflection turns object model views into plain trees describing
// classes, structs and functions: names, property types and offsets.
package reflection

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"uescope/uobject"
)

// Class describes a class and, through Super, its ancestors
type Class struct {
	Class      uobject.Class
	Name       string // path name, e.g. "Engine::Actor"
	Super      *Class
	Properties []Property
	Structs    []Struct
	Functions  []Function
}

// Struct describes a struct and the properties declared on it
type Struct struct {
	Struct     uobject.Struct
	Name       string
	Properties []Property
}

// Param is one function parameter
type Param struct {
	Property
}

// Out reports whether the parameter is passed by reference
func (p Param) Out() bool {
	return p.Flags.Has(uobject.PropertyOutParm)
}

func (p Param) Optional() bool {
	return p.Flags.Has(uobject.PropertyOptionalParm)
}

// Function describes a function's signature
type Function struct {
	Function uobject.Function
	Name     string
	Flags    uobject.FunctionFlags
	Params   []Param
	Return   *Param
}

func byOffset(a, b Property) int {
	return cmp.Compare(a.Offset, b.Offset)
}

// BuildClass describes c and each of its ancestors
func BuildClass(c uobject.Class) (*Class, error) {
	return buildClass(c, 0)
}

func buildClass(c uobject.Class, depth int) (*Class, error) {
	if depth >= uobject.MaxChainLength {
		return nil, fmt.Errorf("superclasses of %s: %w", c.Address().ToString(), uobject.ErrChainTooLong)
	}

	name, err := c.PathName()
	if err != nil {
		return nil, err
	}
	out := &Class{Class: c, Name: name}

	super, err := c.SuperClass()
	switch {
	case errors.Is(err, uobject.ErrNullPointer):
	case err != nil:
		return nil, fmt.Errorf("%s: %w", name, err)
	default:
		if out.Super, err = buildClass(super, depth+1); err != nil {
			return nil, err
		}
	}

	for p, err := range c.Properties() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		prop, err := BuildProperty(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out.Properties = append(out.Properties, prop)
	}
	slices.SortStableFunc(out.Properties, byOffset)

	for s, err := range c.ScriptStructs() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		strct, err := BuildStruct(s.Struct)
		if err != nil {
			return nil, err
		}
		out.Structs = append(out.Structs, *strct)
	}
	slices.SortStableFunc(out.Structs, func(a, b Struct) int {
		return cmp.Compare(a.Name, b.Name)
	})

	for f, err := range c.Functions() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		fn, err := BuildFunction(f)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, *fn)
	}
	slices.SortStableFunc(out.Functions, func(a, b Function) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return out, nil
}

// BuildStruct describes s. Every child that is a property is included,
// whatever its element size.
func BuildStruct(s uobject.Struct) (*Struct, error) {
	name, err := s.Name()
	if err != nil {
		return nil, err
	}
	out := &Struct{Struct: s, Name: name}

	for child, err := range s.Children() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		p, ok := uobject.Cast[uobject.Property](child)
		if !ok {
			continue
		}
		prop, err := BuildProperty(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out.Properties = append(out.Properties, prop)
	}
	slices.SortStableFunc(out.Properties, byOffset)

	return out, nil
}

// BuildFunction describes f: its parameters ordered by offset and its
// return value, if any
func BuildFunction(f uobject.Function) (*Function, error) {
	name, err := f.Name()
	if err != nil {
		return nil, err
	}
	out := &Function{Function: f, Name: name, Flags: f.FunctionFlags()}

	for p, err := range f.Params() {
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		prop, err := BuildProperty(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out.Params = append(out.Params, Param{prop})
	}
	slices.SortStableFunc(out.Params, func(a, b Param) int {
		return byOffset(a.Property, b.Property)
	})

	ret, ok, err := f.ReturnValue()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if ok {
		prop, err := BuildProperty(ret)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out.Return = &Param{prop}
	}

	return out, nil
}
