package mapping

import (
	"reflect"
	"slices"

	"csvcaster/primitive"
)

// AutoMap builds the default mapping of a struct type from its fields and
// their csv tags. Embedded structs and struct-typed fields that are not
// written as a single value become references without a prefix (unless the
// tag sets one); their columns are resolved when the mapping is flattened.
func AutoMap(t reflect.Type) (*Map, error) {
	m := NewMap(t)
	if err := m.Err(); err != nil {
		return nil, err
	}

	for i := range m.typ.NumField() {
		f := m.typ.Field(i)

		tag, err := ParseTag(f.Tag.Get(TagKey))
		if err != nil {
			return nil, &TagError{Type: m.typ, Field: f.Name, Tag: f.Tag.Get(TagKey), Err: err}
		}

		if isReference(f) {
			if tag.Ignore {
				continue
			}

			m.items = append(m.items, item{reference: &Reference{
				Member:   f.Name,
				Path:     slices.Clone(f.Index),
				Type:     derefType(f.Type),
				Prefix:   tag.Prefix,
				exported: f.IsExported() || f.Anonymous,
			}})

			continue
		}

		name := f.Name
		if tag.Name != "" {
			name = tag.Name
		}

		m.items = append(m.items, item{column: &Column{
			Name:     name,
			Member:   f.Name,
			Path:     slices.Clone(f.Index),
			Type:     f.Type,
			Index:    tag.Index,
			Format:   tag.Format,
			Ignore:   tag.Ignore,
			Exported: f.IsExported(),
		}})
	}

	return m, nil
}

// isReference reports whether the field is flattened rather than written as
// one value.
func isReference(f reflect.StructField) bool {
	return derefType(f.Type).Kind() == reflect.Struct && !primitive.IsScalar(f.Type)
}
