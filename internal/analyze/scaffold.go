package analyze

import (
	"strings"

	"csvcaster/mapping"
)

// TypePath builds a dotted member path such as "Customer.Address.City".
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from its first member.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	if p == nil {
		return NewTypePath(name)
	}

	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// String returns the full path string.
func (p *TypePath) String() string {
	if p == nil {
		return ""
	}

	return strings.Join(p.parts, ".")
}

// ScaffoldOptions controls Scaffold.
type ScaffoldOptions struct {
	// Flatten lists the columns of nested structs with member paths instead
	// of declaring references.
	Flatten bool
	// MaxDepth bounds flattening. Zero means 8.
	MaxDepth int
}

// Scaffold drafts the mapping file entry of a struct type from its fields
// and csv tags, for a human to review. Collections are ignored.
func Scaffold(info *TypeInfo, opts ScaffoldOptions) mapping.TypeMapping {
	if opts.MaxDepth == 0 {
		opts.MaxDepth = 8
	}

	s := &scaffolder{
		opts:     opts,
		tm:       mapping.TypeMapping{Type: info.ID.Short()},
		visiting: map[TypeID]bool{info.ID: true},
	}

	s.fields(info, nil, "", 0)

	return s.tm
}

// ScaffoldFile wraps Scaffold results in a mapping file.
func ScaffoldFile(infos []*TypeInfo, opts ScaffoldOptions) *mapping.File {
	f := &mapping.File{Version: "1"}
	for _, info := range infos {
		f.Mappings = append(f.Mappings, Scaffold(info, opts))
	}

	return f
}

type scaffolder struct {
	opts     ScaffoldOptions
	tm       mapping.TypeMapping
	visiting map[TypeID]bool
}

func (s *scaffolder) fields(t *TypeInfo, path *TypePath, prefix string, depth int) {
	root := path == nil

	for i := range t.Fields {
		f := &t.Fields[i]
		if !f.Exported && !f.Embedded {
			continue
		}

		member := path.Field(f.Name)
		tag := f.CSVTag()

		if tag.Ignore {
			if root {
				s.tm.Ignore = append(s.tm.Ignore, member.String())
			}

			continue
		}

		ft := f.Type.Deref()

		switch {
		case ft == nil:
			continue
		case ft.Kind == TypeKindStruct && f.Embedded:
			// promoted fields keep the path of the embedding struct
			if !s.visiting[ft.ID] {
				s.visit(ft, path, prefix+tag.Prefix, depth)
			}
		case ft.Kind == TypeKindStruct:
			switch {
			case s.opts.Flatten && depth < s.opts.MaxDepth && !s.visiting[ft.ID]:
				s.visit(ft, member, prefix+tag.Prefix, depth+1)
			case root && !s.opts.Flatten:
				s.tm.References = append(s.tm.References, mapping.ReferenceSpec{Member: member.String(), Prefix: tag.Prefix})
			}
		case ft.Kind == TypeKindUnknown, ft.Kind == TypeKindSlice && !ft.IsBytes():
			if root {
				s.tm.Ignore = append(s.tm.Ignore, member.String())
			}
		default:
			s.column(f, member, tag, prefix, root)
		}
	}
}

func (s *scaffolder) visit(t *TypeInfo, path *TypePath, prefix string, depth int) {
	s.visiting[t.ID] = true
	s.fields(t, path, prefix, depth)
	delete(s.visiting, t.ID)
}

func (s *scaffolder) column(f *FieldInfo, member *TypePath, tag mapping.Tag, prefix string, root bool) {
	col := mapping.ColumnSpec{
		Member: member.String(),
		Format: tag.Format,
	}

	name := f.Name
	if tag.Name != "" {
		name = tag.Name
	}

	if name = prefix + name; name != col.Member {
		col.Name = name
	}

	if root && tag.Index != mapping.NoIndex {
		index := tag.Index
		col.Index = &index
	}

	s.tm.Columns = append(s.tm.Columns, col)
}
