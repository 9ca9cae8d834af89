package reflection

import (
	"errors"
	"fmt"

	"uescope/uobject"
)

// MaxTypeDepth bounds how deeply container types are classified. Deeper
// element types are reported as Unknown.
const MaxTypeDepth = 8

// Property is a property with its classified type
type Property struct {
	Property    uobject.Property
	Name        string
	Type        PropertyType
	Offset      int
	ArrayDim    int
	ElementSize int
	Flags       uobject.PropertyFlags
}

func BuildProperty(p uobject.Property) (Property, error) {
	name, err := p.Name()
	if err != nil {
		return Property{}, err
	}

	typ, err := classify(p, 0)
	if err != nil {
		return Property{}, fmt.Errorf("classify %s: %w", name, err)
	}

	return Property{
		Property:    p,
		Name:        name,
		Type:        typ,
		Offset:      int(p.Offset()),
		ArrayDim:    int(p.ArrayDim()),
		ElementSize: int(p.ElementSize()),
		Flags:       p.PropertyFlags(),
	}, nil
}

// classify matches p against the property kinds in a fixed order. The order
// decides ties: a ClassProperty is an ObjectProperty and classifies as one.
func classify(p uobject.Property, depth int) (PropertyType, error) {
	switch {
	case uobject.IsA[uobject.BoolProperty](p):
		return Native{Kind: Bool}, nil
	case uobject.IsA[uobject.ByteProperty](p):
		return Native{Kind: U8}, nil
	case uobject.IsA[uobject.IntProperty](p):
		return Native{Kind: I32}, nil
	case uobject.IsA[uobject.FloatProperty](p):
		return Native{Kind: F32}, nil
	case uobject.IsA[uobject.QWordProperty](p):
		return Native{Kind: U64}, nil
	case uobject.IsA[uobject.NameProperty](p):
		return StructLike{Kind: FName}, nil
	case uobject.IsA[uobject.StrProperty](p):
		return StructLike{Kind: FString}, nil
	}

	if sp, ok := uobject.Cast[uobject.StructProperty](p); ok {
		name, ok, err := nameOf(sp.Struct())
		if !ok || err != nil {
			return Unknown{}, err
		}
		return StructLike{Kind: FStruct, Name: name}, nil
	}

	if uobject.IsA[uobject.DelegateProperty](p) {
		return StructLike{Kind: FScriptDelegate}, nil
	}

	if ap, ok := uobject.Cast[uobject.ArrayProperty](p); ok {
		inner, err := ap.Inner()
		innerType, err := elementType(inner, err, depth)
		if err != nil {
			return Unknown{}, err
		}
		return ArrayOf{Inner: innerType}, nil
	}

	if mp, ok := uobject.Cast[uobject.MapProperty](p); ok {
		key, err := mp.Key()
		keyType, err := elementType(key, err, depth)
		if err != nil {
			return Unknown{}, err
		}
		value, err := mp.Value()
		valueType, err := elementType(value, err, depth)
		if err != nil {
			return Unknown{}, err
		}
		return MapOf{Key: keyType, Value: valueType}, nil
	}

	if op, ok := uobject.Cast[uobject.ObjectProperty](p); ok {
		class, err := op.PropertyClass()
		return pointerType(ObjectPointer, class, err)
	}
	// only reached when the target's ClassProperty does not derive from ObjectProperty
	if cp, ok := uobject.Cast[uobject.ClassProperty](p); ok {
		class, err := cp.MetaClass()
		return pointerType(ClassPointer, class, err)
	}
	if ip, ok := uobject.Cast[uobject.InterfaceProperty](p); ok {
		class, err := ip.InterfaceClass()
		return pointerType(InterfacePointer, class, err)
	}

	return Unknown{}, nil
}

type named interface {
	Name() (string, error)
}

// nameOf names a payload object. A null payload reports false.
func nameOf(o named, err error) (string, bool, error) {
	if errors.Is(err, uobject.ErrNullPointer) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	name, err := o.Name()
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func pointerType(kind PointerKind, class uobject.Class, err error) (PropertyType, error) {
	name, ok, err := nameOf(class, err)
	if !ok || err != nil {
		return Unknown{}, err
	}
	return Pointer{Kind: kind, Class: name}, nil
}

// elementType classifies a container's element one level deeper. A null
// element or one past MaxTypeDepth is Unknown.
func elementType(p uobject.Property, err error, depth int) (PropertyType, error) {
	if errors.Is(err, uobject.ErrNullPointer) {
		return Unknown{}, nil
	}
	if err != nil {
		return nil, err
	}
	if depth+1 >= MaxTypeDepth {
		return Unknown{}, nil
	}
	return classify(p, depth+1)
}
