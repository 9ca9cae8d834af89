package uobject

type Property struct{ Field }

func (Property) StaticTag() TypeTag { return TagProperty }

func (p Property) ArrayDim() int32 {
	return p.i32(p.rt.layout.PropertyArrayDim)
}

func (p Property) ElementSize() int32 {
	return p.i32(p.rt.layout.PropertyElementSize)
}

func (p Property) PropertyFlags() PropertyFlags {
	return PropertyFlags(p.u64(p.rt.layout.PropertyFlags))
}

// Offset is the property's byte offset inside an instance of its owner
func (p Property) Offset() int32 {
	return p.i32(p.rt.layout.PropertyOffset)
}

type BoolProperty struct{ Property }

func (BoolProperty) StaticTag() TypeTag { return TagBoolProperty }

func (p BoolProperty) BitMask() uint64 {
	return p.u64(p.rt.layout.BoolBitMask)
}

type ByteProperty struct{ Property }

func (ByteProperty) StaticTag() TypeTag { return TagByteProperty }

// Enum returns the enum backing the byte, ErrNullPointer for a plain byte
func (p ByteProperty) Enum() (Enum, error) {
	return load[Enum](p.rt, p.ptr(p.rt.layout.ByteEnum))
}

type IntProperty struct{ Property }

func (IntProperty) StaticTag() TypeTag { return TagIntProperty }

type FloatProperty struct{ Property }

func (FloatProperty) StaticTag() TypeTag { return TagFloatProperty }

type QWordProperty struct{ Property }

func (QWordProperty) StaticTag() TypeTag { return TagQWordProperty }

type NameProperty struct{ Property }

func (NameProperty) StaticTag() TypeTag { return TagNameProperty }

type StrProperty struct{ Property }

func (StrProperty) StaticTag() TypeTag { return TagStrProperty }

type StructProperty struct{ Property }

func (StructProperty) StaticTag() TypeTag { return TagStructProperty }

func (p StructProperty) Struct() (Struct, error) {
	return load[Struct](p.rt, p.ptr(p.rt.layout.StructStruct))
}

type DelegateProperty struct{ Property }

func (DelegateProperty) StaticTag() TypeTag { return TagDelegateProperty }

// Function returns the delegate's signature function
func (p DelegateProperty) Function() (Function, error) {
	return load[Function](p.rt, p.ptr(p.rt.layout.DelegateFunction))
}

type ArrayProperty struct{ Property }

func (ArrayProperty) StaticTag() TypeTag { return TagArrayProperty }

func (p ArrayProperty) Inner() (Property, error) {
	return load[Property](p.rt, p.ptr(p.rt.layout.ArrayInner))
}

type MapProperty struct{ Property }

func (MapProperty) StaticTag() TypeTag { return TagMapProperty }

func (p MapProperty) Key() (Property, error) {
	return load[Property](p.rt, p.ptr(p.rt.layout.MapKey))
}

func (p MapProperty) Value() (Property, error) {
	return load[Property](p.rt, p.ptr(p.rt.layout.MapValue))
}

type ObjectProperty struct{ Property }

func (ObjectProperty) StaticTag() TypeTag { return TagObjectProperty }

func (p ObjectProperty) PropertyClass() (Class, error) {
	return load[Class](p.rt, p.ptr(p.rt.layout.ObjectPropertyClass))
}

type ClassProperty struct{ ObjectProperty }

func (ClassProperty) StaticTag() TypeTag { return TagClassProperty }

func (p ClassProperty) MetaClass() (Class, error) {
	return load[Class](p.rt, p.ptr(p.rt.layout.ClassMetaClass))
}

type ComponentProperty struct{ ObjectProperty }

func (ComponentProperty) StaticTag() TypeTag { return TagComponentProperty }

type InterfaceProperty struct{ Property }

func (InterfaceProperty) StaticTag() TypeTag { return TagInterfaceProperty }

func (p InterfaceProperty) InterfaceClass() (Class, error) {
	return load[Class](p.rt, p.ptr(p.rt.layout.InterfaceClass))
}
