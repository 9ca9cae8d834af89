package uobject

import "fmt"

// TypeTag names one level of the target's reflected class hierarchy
type TypeTag int

const (
	TagObject TypeTag = iota
	TagField
	TagStruct
	TagState
	TagClass
	TagScriptStruct
	TagFunction
	TagEnum
	TagConst
	TagProperty
	TagBoolProperty
	TagByteProperty
	TagIntProperty
	TagFloatProperty
	TagQWordProperty
	TagNameProperty
	TagStrProperty
	TagStructProperty
	TagDelegateProperty
	TagArrayProperty
	TagMapProperty
	TagObjectProperty
	TagClassProperty
	TagComponentProperty
	TagInterfaceProperty

	numTags
)

// CorePackage is the package every tagged class lives in
const CorePackage = "Core"

type tagInfo struct {
	name  string
	super TypeTag
}

var tags = [numTags]tagInfo{
	TagObject:            {"Object", TagObject},
	TagField:             {"Field", TagObject},
	TagStruct:            {"Struct", TagField},
	TagState:             {"State", TagStruct},
	TagClass:             {"Class", TagState},
	TagScriptStruct:      {"ScriptStruct", TagStruct},
	TagFunction:          {"Function", TagStruct},
	TagEnum:              {"Enum", TagField},
	TagConst:             {"Const", TagField},
	TagProperty:          {"Property", TagField},
	TagBoolProperty:      {"BoolProperty", TagProperty},
	TagByteProperty:      {"ByteProperty", TagProperty},
	TagIntProperty:       {"IntProperty", TagProperty},
	TagFloatProperty:     {"FloatProperty", TagProperty},
	TagQWordProperty:     {"QWordProperty", TagProperty},
	TagNameProperty:      {"NameProperty", TagProperty},
	TagStrProperty:       {"StrProperty", TagProperty},
	TagStructProperty:    {"StructProperty", TagProperty},
	TagDelegateProperty:  {"DelegateProperty", TagProperty},
	TagArrayProperty:     {"ArrayProperty", TagProperty},
	TagMapProperty:       {"MapProperty", TagProperty},
	TagObjectProperty:    {"ObjectProperty", TagProperty},
	TagClassProperty:     {"ClassProperty", TagObjectProperty},
	TagComponentProperty: {"ComponentProperty", TagObjectProperty},
	TagInterfaceProperty: {"InterfaceProperty", TagProperty},
}

// Tags returns every tag, parents before children
func Tags() []TypeTag {
	out := make([]TypeTag, numTags)
	for i := range out {
		out[i] = TypeTag(i)
	}
	return out
}

func (t TypeTag) Valid() bool {
	return t >= 0 && t < numTags
}

// Name is the class name without package, e.g. "Function"
func (t TypeTag) Name() string {
	if !t.Valid() {
		return fmt.Sprintf("TypeTag(%d)", int(t))
	}
	return tags[t].name
}

// Super returns the parent tag. The root reports false.
func (t TypeTag) Super() (TypeTag, bool) {
	if !t.Valid() || t == TagObject {
		return 0, false
	}
	return tags[t].super, true
}

// Is reports whether t is other or derives from it
func (t TypeTag) Is(other TypeTag) bool {
	for cur, ok := t, t.Valid(); ok; cur, ok = cur.Super() {
		if cur == other {
			return true
		}
	}
	return false
}

// FullName is the lookup key of the tag's class, e.g. "Class Core::Function"
func (t TypeTag) FullName() string {
	return "Class " + CorePackage + "::" + t.Name()
}

func (t TypeTag) String() string {
	return t.Name()
}
