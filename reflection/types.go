package reflection

import "fmt"

// PropertyType is the classified type of a property. The set of
// implementations is closed: Native, StructLike, Pointer, ArrayOf, MapOf
// and Unknown.
type PropertyType interface {
	// TypeName renders the type the way a declaration would spell it
	TypeName() string
	propertyType()
}

type NativeKind int

const (
	U8 NativeKind = iota
	I32
	U64
	F32
	Bool
)

var nativeNames = [...]string{U8: "u8", I32: "i32", U64: "u64", F32: "f32", Bool: "bool"}

// Native is a fixed-size scalar
type Native struct {
	Kind NativeKind
}

func (Native) propertyType() {}

func (n Native) TypeName() string {
	if n.Kind < 0 || int(n.Kind) >= len(nativeNames) {
		return fmt.Sprintf("NativeKind(%d)", int(n.Kind))
	}
	return nativeNames[n.Kind]
}

type StructKind int

const (
	FName StructKind = iota
	FString
	FScriptDelegate
	FStruct
)

// StructLike is a value with internal layout: the engine's name, string and
// delegate types or a script struct named by Name
type StructLike struct {
	Kind StructKind
	Name string
}

func (StructLike) propertyType() {}

func (s StructLike) TypeName() string {
	switch s.Kind {
	case FName:
		return "FName"
	case FString:
		return "FString"
	case FScriptDelegate:
		return "FScriptDelegate"
	}
	return s.Name
}

type PointerKind int

const (
	ObjectPointer PointerKind = iota
	ClassPointer
	InterfacePointer
)

// Pointer refers to an object whose class is named by Class
type Pointer struct {
	Kind  PointerKind
	Class string
}

func (Pointer) propertyType() {}

func (p Pointer) TypeName() string {
	return "*" + p.Class
}

// ArrayOf is a dynamic array of Inner
type ArrayOf struct {
	Inner PropertyType
}

func (ArrayOf) propertyType() {}

func (a ArrayOf) TypeName() string {
	return "TArray<" + a.Inner.TypeName() + ">"
}

// MapOf is a map from Key to Value
type MapOf struct {
	Key   PropertyType
	Value PropertyType
}

func (MapOf) propertyType() {}

func (m MapOf) TypeName() string {
	return "TMap<" + m.Key.TypeName() + ", " + m.Value.TypeName() + ">"
}

// Unknown is any property no other variant matches
type Unknown struct{}

func (Unknown) propertyType() {}

func (Unknown) TypeName() string {
	return "Unknown"
}
