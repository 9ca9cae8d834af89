package uobject

import (
	"fmt"
	"math/bits"
	"strings"
)

type ObjectFlags uint64

const (
	ObjectPublic                       ObjectFlags = 0x00000001
	ObjectStandalone                   ObjectFlags = 0x00000002
	ObjectMarkAsNative                 ObjectFlags = 0x00000004
	ObjectTransactional                ObjectFlags = 0x00000008
	ObjectClassDefaultObject           ObjectFlags = 0x00000010
	ObjectArchetypeObject              ObjectFlags = 0x00000020
	ObjectTransient                    ObjectFlags = 0x00000040
	ObjectMarkAsRootSet                ObjectFlags = 0x00000080
	ObjectTagGarbageTemp               ObjectFlags = 0x00000100
	ObjectNeedInitialization           ObjectFlags = 0x00000200
	ObjectNeedLoad                     ObjectFlags = 0x00000400
	ObjectKeepForCooker                ObjectFlags = 0x00000800
	ObjectNeedPostLoad                 ObjectFlags = 0x00001000
	ObjectNeedPostLoadSubobjects       ObjectFlags = 0x00002000
	ObjectNewerVersionExists           ObjectFlags = 0x00004000
	ObjectBeginDestroyed               ObjectFlags = 0x00008000
	ObjectFinishDestroyed              ObjectFlags = 0x00010000
	ObjectBeingRegenerated             ObjectFlags = 0x00020000
	ObjectDefaultSubObject             ObjectFlags = 0x00040000
	ObjectWasLoaded                    ObjectFlags = 0x00080000
	ObjectTextExportTransient          ObjectFlags = 0x00100000
	ObjectLoadCompleted                ObjectFlags = 0x00200000
	ObjectInheritableComponentTemplate ObjectFlags = 0x00400000
	ObjectDuplicateTransient           ObjectFlags = 0x00800000
	ObjectStrongRefOnFrame             ObjectFlags = 0x01000000
	ObjectNonPIEDuplicateTransient     ObjectFlags = 0x02000000
	ObjectDynamic                      ObjectFlags = 0x04000000
	ObjectWillBeLoaded                 ObjectFlags = 0x08000000
)

var objectFlagNames = map[uint64]string{
	0x00000001: "Public",
	0x00000002: "Standalone",
	0x00000004: "MarkAsNative",
	0x00000008: "Transactional",
	0x00000010: "ClassDefaultObject",
	0x00000020: "ArchetypeObject",
	0x00000040: "Transient",
	0x00000080: "MarkAsRootSet",
	0x00000100: "TagGarbageTemp",
	0x00000200: "NeedInitialization",
	0x00000400: "NeedLoad",
	0x00000800: "KeepForCooker",
	0x00001000: "NeedPostLoad",
	0x00002000: "NeedPostLoadSubobjects",
	0x00004000: "NewerVersionExists",
	0x00008000: "BeginDestroyed",
	0x00010000: "FinishDestroyed",
	0x00020000: "BeingRegenerated",
	0x00040000: "DefaultSubObject",
	0x00080000: "WasLoaded",
	0x00100000: "TextExportTransient",
	0x00200000: "LoadCompleted",
	0x00400000: "InheritableComponentTemplate",
	0x00800000: "DuplicateTransient",
	0x01000000: "StrongRefOnFrame",
	0x02000000: "NonPIEDuplicateTransient",
	0x04000000: "Dynamic",
	0x08000000: "WillBeLoaded",
}

func (f ObjectFlags) Has(other ObjectFlags) bool { return f&other == other }
func (f ObjectFlags) String() string             { return flagString(uint64(f), objectFlagNames) }

type PropertyFlags uint64

const (
	PropertyEdit             PropertyFlags = 0x0000000000000001
	PropertyConst            PropertyFlags = 0x0000000000000002
	PropertyInput            PropertyFlags = 0x0000000000000004
	PropertyExportObject     PropertyFlags = 0x0000000000000008
	PropertyOptionalParm     PropertyFlags = 0x0000000000000010
	PropertyNet              PropertyFlags = 0x0000000000000020
	PropertyEditConstArray   PropertyFlags = 0x0000000000000040
	PropertyParm             PropertyFlags = 0x0000000000000080
	PropertyOutParm          PropertyFlags = 0x0000000000000100
	PropertySkipParm         PropertyFlags = 0x0000000000000200
	PropertyReturnParm       PropertyFlags = 0x0000000000000400
	PropertyCoerceParm       PropertyFlags = 0x0000000000000800
	PropertyNative           PropertyFlags = 0x0000000000001000
	PropertyTransient        PropertyFlags = 0x0000000000002000
	PropertyConfig           PropertyFlags = 0x0000000000004000
	PropertyLocalized        PropertyFlags = 0x0000000000008000
	PropertyTravel           PropertyFlags = 0x0000000000010000
	PropertyEditConst        PropertyFlags = 0x0000000000020000
	PropertyGlobalConfig     PropertyFlags = 0x0000000000040000
	PropertyComponent        PropertyFlags = 0x0000000000080000
	PropertyNeedCtorLink     PropertyFlags = 0x0000000000400000
	PropertyNoExport         PropertyFlags = 0x0000000000800000
	PropertyNoClear          PropertyFlags = 0x0000000002000000
	PropertyEditInline       PropertyFlags = 0x0000000004000000
	PropertyEdFindable       PropertyFlags = 0x0000000008000000
	PropertyEditInlineUse    PropertyFlags = 0x0000000010000000
	PropertyDeprecated       PropertyFlags = 0x0000000020000000
	PropertyEditInlineNotify PropertyFlags = 0x0000000040000000
	PropertyRepNotify        PropertyFlags = 0x0000000100000000
	PropertyInterp           PropertyFlags = 0x0000000200000000
	PropertyNonTransactional PropertyFlags = 0x0000000400000000
	PropertyEditorOnly       PropertyFlags = 0x0000000800000000
)

var propertyFlagNames = map[uint64]string{
	0x0000000000000001: "Edit",
	0x0000000000000002: "Const",
	0x0000000000000004: "Input",
	0x0000000000000008: "ExportObject",
	0x0000000000000010: "OptionalParm",
	0x0000000000000020: "Net",
	0x0000000000000040: "EditConstArray",
	0x0000000000000080: "Parm",
	0x0000000000000100: "OutParm",
	0x0000000000000200: "SkipParm",
	0x0000000000000400: "ReturnParm",
	0x0000000000000800: "CoerceParm",
	0x0000000000001000: "Native",
	0x0000000000002000: "Transient",
	0x0000000000004000: "Config",
	0x0000000000008000: "Localized",
	0x0000000000010000: "Travel",
	0x0000000000020000: "EditConst",
	0x0000000000040000: "GlobalConfig",
	0x0000000000080000: "Component",
	0x0000000000400000: "NeedCtorLink",
	0x0000000000800000: "NoExport",
	0x0000000002000000: "NoClear",
	0x0000000004000000: "EditInline",
	0x0000000008000000: "EdFindable",
	0x0000000010000000: "EditInlineUse",
	0x0000000020000000: "Deprecated",
	0x0000000040000000: "EditInlineNotify",
	0x0000000100000000: "RepNotify",
	0x0000000200000000: "Interp",
	0x0000000400000000: "NonTransactional",
	0x0000000800000000: "EditorOnly",
}

func (f PropertyFlags) Has(other PropertyFlags) bool { return f&other == other }
func (f PropertyFlags) String() string               { return flagString(uint64(f), propertyFlagNames) }

type FunctionFlags uint64

const (
	FunctionFinal        FunctionFlags = 0x00000001
	FunctionDefined      FunctionFlags = 0x00000002
	FunctionIterator     FunctionFlags = 0x00000004
	FunctionLatent       FunctionFlags = 0x00000008
	FunctionPreOperator  FunctionFlags = 0x00000010
	FunctionSingular     FunctionFlags = 0x00000020
	FunctionNet          FunctionFlags = 0x00000040
	FunctionNetReliable  FunctionFlags = 0x00000080
	FunctionSimulated    FunctionFlags = 0x00000100
	FunctionExec         FunctionFlags = 0x00000200
	FunctionNative       FunctionFlags = 0x00000400
	FunctionEvent        FunctionFlags = 0x00000800
	FunctionOperator     FunctionFlags = 0x00001000
	FunctionStatic       FunctionFlags = 0x00002000
	FunctionOptionalParm FunctionFlags = 0x00004000
	FunctionConst        FunctionFlags = 0x00008000
	FunctionInvariant    FunctionFlags = 0x00010000
	FunctionPublic       FunctionFlags = 0x00020000
	FunctionPrivate      FunctionFlags = 0x00040000
	FunctionProtected    FunctionFlags = 0x00080000
	FunctionDelegate     FunctionFlags = 0x00100000
	FunctionNetServer    FunctionFlags = 0x00200000
	FunctionHasOutParms  FunctionFlags = 0x00400000
	FunctionHasDefaults  FunctionFlags = 0x00800000
	FunctionNetClient    FunctionFlags = 0x01000000
	FunctionDLLImport    FunctionFlags = 0x02000000
)

var functionFlagNames = map[uint64]string{
	0x00000001: "Final",
	0x00000002: "Defined",
	0x00000004: "Iterator",
	0x00000008: "Latent",
	0x00000010: "PreOperator",
	0x00000020: "Singular",
	0x00000040: "Net",
	0x00000080: "NetReliable",
	0x00000100: "Simulated",
	0x00000200: "Exec",
	0x00000400: "Native",
	0x00000800: "Event",
	0x00001000: "Operator",
	0x00002000: "Static",
	0x00004000: "OptionalParm",
	0x00008000: "Const",
	0x00010000: "Invariant",
	0x00020000: "Public",
	0x00040000: "Private",
	0x00080000: "Protected",
	0x00100000: "Delegate",
	0x00200000: "NetServer",
	0x00400000: "HasOutParms",
	0x00800000: "HasDefaults",
	0x01000000: "NetClient",
	0x02000000: "DLLImport",
}

func (f FunctionFlags) Has(other FunctionFlags) bool { return f&other == other }
func (f FunctionFlags) String() string               { return flagString(uint64(f), functionFlagNames) }

// flagString renders set bits low to high, unknown bits in hex
func flagString(v uint64, names map[uint64]string) string {
	if v == 0 {
		return "None"
	}

	var parts []string
	for v != 0 {
		bit := uint64(1) << bits.TrailingZeros64(v)
		v &^= bit
		if name, ok := names[bit]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("0x%x", bit))
		}
	}
	return strings.Join(parts, "|")
}
