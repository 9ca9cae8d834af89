package uobject

import (
	"errors"
	"fmt"

	"uescope/anchor"
	"uescope/process"
)

// Offset is a byte offset inside a record
type Offset = process.ProcessMemoryAddress

// Layout is the record layout of the target binary. Every offset is relative
// to the start of the record that owns it.
type Layout struct {
	ObjectFlags         Offset
	ObjectInternalIndex Offset
	ObjectOuter         Offset
	ObjectName          Offset
	ObjectClass         Offset

	FieldNext Offset

	StructSuper        Offset
	StructChildren     Offset
	StructPropertySize Offset

	FunctionFlags             Offset
	FunctionNative            Offset
	FunctionRepOffset         Offset
	FunctionFriendlyName      Offset
	FunctionPrecedence        Offset
	FunctionNumParms          Offset
	FunctionParmsSize         Offset
	FunctionReturnValueOffset Offset
	FunctionFunc              Offset

	EnumNames Offset

	PropertyArrayDim    Offset
	PropertyElementSize Offset
	PropertyFlags       Offset
	PropertyOffset      Offset

	BoolBitMask         Offset
	ByteEnum            Offset
	StructStruct        Offset
	DelegateFunction    Offset
	ArrayInner          Offset
	MapKey              Offset
	MapValue            Offset
	ObjectPropertyClass Offset
	ClassMetaClass      Offset
	InterfaceClass      Offset

	// NameEntryName is where the string starts inside a name entry
	NameEntryName Offset
	// NameMaxLength bounds a name entry's string in characters
	NameMaxLength int

	Sizes [numTags]process.ProcessMemorySize
}

// DefaultLayout returns the layout of the supported 64-bit target
func DefaultLayout() *Layout {
	return &Layout{
		ObjectFlags:         0x10,
		ObjectInternalIndex: 0x38,
		ObjectOuter:         0x40,
		ObjectName:          0x48,
		ObjectClass:         0x50,

		FieldNext: 0x60,

		StructSuper:        0x80,
		StructChildren:     0x88,
		StructPropertySize: 0x90,

		FunctionFlags:             0x130,
		FunctionNative:            0x138,
		FunctionRepOffset:         0x13A,
		FunctionFriendlyName:      0x13C,
		FunctionPrecedence:        0x144,
		FunctionNumParms:          0x145,
		FunctionParmsSize:         0x146,
		FunctionReturnValueOffset: 0x148,
		FunctionFunc:              0x158,

		EnumNames: 0x70,

		PropertyArrayDim:    0x70,
		PropertyElementSize: 0x74,
		PropertyFlags:       0x78,
		PropertyOffset:      0x98,

		BoolBitMask:         0xC8,
		ByteEnum:            0xC8,
		StructStruct:        0xC8,
		DelegateFunction:    0xC8,
		ArrayInner:          0xC8,
		MapKey:              0xC8,
		MapValue:            0xD0,
		ObjectPropertyClass: 0xC8,
		ClassMetaClass:      0xD8,
		InterfaceClass:      0xC8,

		NameEntryName: anchor.NameEntryPadding,
		NameMaxLength: 0x100,

		Sizes: [numTags]process.ProcessMemorySize{
			TagObject:            0x60,
			TagField:             0x70,
			TagStruct:            0x130,
			TagState:             0x190,
			TagClass:             0x3B8,
			TagScriptStruct:      0x158,
			TagFunction:          0x160,
			TagEnum:              0x80,
			TagConst:             0x80,
			TagProperty:          0xC8,
			TagBoolProperty:      0xD0,
			TagByteProperty:      0xD0,
			TagIntProperty:       0xC8,
			TagFloatProperty:     0xC8,
			TagQWordProperty:     0xC8,
			TagNameProperty:      0xC8,
			TagStrProperty:       0xC8,
			TagStructProperty:    0xD0,
			TagDelegateProperty:  0xD8,
			TagArrayProperty:     0xD0,
			TagMapProperty:       0xD8,
			TagObjectProperty:    0xD8,
			TagClassProperty:     0xE0,
			TagComponentProperty: 0xD8,
			TagInterfaceProperty: 0xD0,
		},
	}
}

// Size returns the record size of tag
func (l *Layout) Size(tag TypeTag) process.ProcessMemorySize {
	if !tag.Valid() {
		return 0
	}
	return l.Sizes[tag]
}

// LayoutField is one named field of a Layout
type LayoutField struct {
	Name   string
	Owner  TypeTag
	Offset Offset
	Width  process.ProcessMemorySize
}

// Fields lists every field of l with the record that introduces it
func (l *Layout) Fields() []LayoutField {
	return []LayoutField{
		{"Object.ObjectFlags", TagObject, l.ObjectFlags, 8},
		{"Object.InternalIndex", TagObject, l.ObjectInternalIndex, 4},
		{"Object.Outer", TagObject, l.ObjectOuter, 8},
		{"Object.Name", TagObject, l.ObjectName, 8},
		{"Object.Class", TagObject, l.ObjectClass, 8},
		{"Field.Next", TagField, l.FieldNext, 8},
		{"Struct.SuperStruct", TagStruct, l.StructSuper, 8},
		{"Struct.Children", TagStruct, l.StructChildren, 8},
		{"Struct.PropertySize", TagStruct, l.StructPropertySize, 4},
		{"Function.FunctionFlags", TagFunction, l.FunctionFlags, 8},
		{"Function.iNative", TagFunction, l.FunctionNative, 2},
		{"Function.RepOffset", TagFunction, l.FunctionRepOffset, 2},
		{"Function.FriendlyName", TagFunction, l.FunctionFriendlyName, 8},
		{"Function.OperatorPrecedence", TagFunction, l.FunctionPrecedence, 1},
		{"Function.NumParms", TagFunction, l.FunctionNumParms, 1},
		{"Function.ParmsSize", TagFunction, l.FunctionParmsSize, 2},
		{"Function.ReturnValueOffset", TagFunction, l.FunctionReturnValueOffset, 4},
		{"Function.Func", TagFunction, l.FunctionFunc, 8},
		{"Enum.Names", TagEnum, l.EnumNames, 16},
		{"Property.ArrayDim", TagProperty, l.PropertyArrayDim, 4},
		{"Property.ElementSize", TagProperty, l.PropertyElementSize, 4},
		{"Property.PropertyFlags", TagProperty, l.PropertyFlags, 8},
		{"Property.Offset", TagProperty, l.PropertyOffset, 4},
		{"BoolProperty.BitMask", TagBoolProperty, l.BoolBitMask, 8},
		{"ByteProperty.Enum", TagByteProperty, l.ByteEnum, 8},
		{"StructProperty.Struct", TagStructProperty, l.StructStruct, 8},
		{"DelegateProperty.Function", TagDelegateProperty, l.DelegateFunction, 8},
		{"ArrayProperty.Inner", TagArrayProperty, l.ArrayInner, 8},
		{"MapProperty.Key", TagMapProperty, l.MapKey, 8},
		{"MapProperty.Value", TagMapProperty, l.MapValue, 8},
		{"ObjectProperty.PropertyClass", TagObjectProperty, l.ObjectPropertyClass, 8},
		{"ClassProperty.MetaClass", TagClassProperty, l.ClassMetaClass, 8},
		{"InterfaceProperty.InterfaceClass", TagInterfaceProperty, l.InterfaceClass, 8},
	}
}

var ErrBadLayout = errors.New("inconsistent layout")

// Validate checks that every record extends its parent and that every field
// lies inside its own record after the parent's prefix
func (l *Layout) Validate() error {
	var errs []error
	for _, tag := range Tags() {
		size := l.Size(tag)
		if size == 0 {
			errs = append(errs, fmt.Errorf("%w: %s has no size", ErrBadLayout, tag))
			continue
		}
		if super, ok := tag.Super(); ok && l.Size(super) > size {
			errs = append(errs, fmt.Errorf("%w: %s (0x%x) is smaller than %s (0x%x)", ErrBadLayout, tag, size, super, l.Size(super)))
		}
	}

	for _, f := range l.Fields() {
		end := process.ProcessMemorySize(f.Offset) + f.Width
		if end > l.Size(f.Owner) {
			errs = append(errs, fmt.Errorf("%w: %s ends at 0x%x past %s (0x%x)", ErrBadLayout, f.Name, end, f.Owner, l.Size(f.Owner)))
		}
		if super, ok := f.Owner.Super(); ok && process.ProcessMemorySize(f.Offset) < l.Size(super) {
			errs = append(errs, fmt.Errorf("%w: %s at 0x%x overlaps %s (0x%x)", ErrBadLayout, f.Name, f.Offset, super, l.Size(super)))
		}
	}

	if l.NameMaxLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: name length %d", ErrBadLayout, l.NameMaxLength))
	}

	return errors.Join(errs...)
}
