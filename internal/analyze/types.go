package analyze

import (
	"go/types"
	"reflect"
	"strings"

	"csvcaster/internal/common"
	"csvcaster/mapping"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "csvcaster/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short returns the package-name form used in mapping files ("store.Order").
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown  TypeKind = iota
	TypeKindBasic             // int, string, bool, etc.
	TypeKindStruct            // struct type
	TypeKindPointer           // pointer to another type
	TypeKindSlice             // slice of another type
	TypeKindAlias             // named type wrapping a basic type
	TypeKindExternal          // opaque type from an unloaded package (e.g., time.Time)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID         TypeID      // Unique identifier (empty for unnamed types like *T or []T)
	Kind       TypeKind    // Kind of type
	Underlying *TypeInfo   // For named types, the underlying type
	ElemType   *TypeInfo   // For pointers and slices, the element type
	Fields     []FieldInfo // For structs, the list of fields
	GoType     types.Type  // The original go/types.Type
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// Deref follows pointers to the pointed-to type.
func (t *TypeInfo) Deref() *TypeInfo {
	for t != nil && t.Kind == TypeKindPointer {
		t = t.ElemType
	}

	return t
}

// IsBytes reports whether t is []byte.
func (t *TypeInfo) IsBytes() bool {
	if t.Kind != TypeKindSlice || t.ElemType == nil {
		return false
	}

	b, ok := t.ElemType.GoType.(*types.Basic)

	return ok && b.Kind() == types.Byte
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Exported bool              // Whether the field is exported
	Type     *TypeInfo         // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// CSVTag returns the parsed csv tag. A malformed tag reads as no tag.
func (f *FieldInfo) CSVTag() mapping.Tag {
	tag, err := mapping.ParseTag(f.Tag.Get(mapping.TagKey))
	if err != nil {
		return mapping.Tag{Index: mapping.NoIndex}
	}

	return tag
}

// CSVName returns the column name from the csv tag, or the field name.
func (f *FieldInfo) CSVName() string {
	if name := f.CSVTag().Name; name != "" {
		return name
	}

	return f.Name
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// ResolveTypeID resolves a type ID string like:
// - "store.Order" (short)
// - "csvcaster/store.Order" (full)
// - "Order" (name only).
func (g *TypeGraph) ResolveTypeID(typeIDStr string) *TypeInfo {
	lastDot := strings.LastIndex(typeIDStr, ".")
	if lastDot < 0 {
		if typeIDStr == "" {
			return nil
		}

		for id, t := range g.Types {
			if id.Name == typeIDStr {
				return t
			}
		}

		return nil
	}

	pkgStr, name := typeIDStr[:lastDot], typeIDStr[lastDot+1:]
	if pkgStr == "" || name == "" {
		return nil
	}

	if t := g.GetType(TypeID{PkgPath: pkgStr, Name: name}); t != nil {
		return t
	}

	for id, t := range g.Types {
		if id.Name != name {
			continue
		}

		if strings.HasSuffix(id.PkgPath, "/"+pkgStr) || common.PkgAlias(id.PkgPath) == pkgStr {
			return t
		}
	}

	return nil
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Types []TypeID // Named types defined in this package
}
