package mapping

import (
	"errors"
	"fmt"
	"reflect"

	"csvcaster/internal/diagnostic"
	"csvcaster/primitive"
)

var ErrNotStruct = errors.New("only struct types can be mapped")

// Reference flattens the columns of a nested struct into its parent.
type Reference struct {
	// Member is the dotted path of the nested struct field.
	Member string
	// Path is the chain of field indexes to the nested struct.
	Path []int
	// Type is the nested struct type, pointers removed.
	Type reflect.Type
	// Prefix is prepended to every nested column name.
	Prefix string
	// Map is the mapping of the nested type; nil resolves it through the registry.
	Map *Map

	exported bool
}

type item struct {
	column    *Column
	reference *Reference
}

// Map is the declared mapping of one struct type: columns and references in
// declaration order. Builder methods record the first error; Err reports it.
type Map struct {
	typ   reflect.Type
	items []item
	notes diagnostic.Diagnostics
	err   error
}

// NewMap returns an empty mapping for t (pointers are removed).
func NewMap(t reflect.Type) *Map {
	m := &Map{typ: derefType(t)}
	if m.typ.Kind() != reflect.Struct {
		m.err = fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	return m
}

// NewMapFor returns an empty mapping for T.
func NewMapFor[T any]() *Map {
	return NewMap(reflect.TypeFor[T]())
}

// Type returns the mapped struct type.
func (m *Map) Type() reflect.Type {
	return m.typ
}

// Err returns the first error recorded while building the map.
func (m *Map) Err() error {
	return m.err
}

// Columns returns the declared columns in declaration order.
func (m *Map) Columns() []*Column {
	var cols []*Column

	for _, it := range m.items {
		if it.column != nil {
			cols = append(cols, it.column)
		}
	}

	return cols
}

// References returns the declared references in declaration order.
func (m *Map) References() []*Reference {
	var refs []*Reference

	for _, it := range m.items {
		if it.reference != nil {
			refs = append(refs, it.reference)
		}
	}

	return refs
}

// Column returns a builder for the column reading member, a dotted path.
// The column is added on first use.
func (m *Map) Column(member string) *ColumnBuilder {
	if col := m.findColumn(member); col != nil {
		return &ColumnBuilder{m: m, col: col}
	}

	col := &Column{Name: member, Member: member, Index: NoIndex, Exported: true}

	if m.err == nil {
		path, err := ParsePath(member)
		if err != nil {
			m.fail(err)
		} else if acc, err := path.resolve(m.typ); err != nil {
			m.fail(err)
		} else {
			col.Name = path.Segments[len(path.Segments)-1]
			col.Path = acc.index
			col.Type = acc.typ
			col.Exported = acc.exported
		}
	}

	m.items = append(m.items, item{column: col})

	return &ColumnBuilder{m: m, col: col}
}

// Computed adds a column whose value is the expression evaluated against the record.
func (m *Map) Computed(name, expression string) *ColumnBuilder {
	col := &Column{Name: name, Index: NoIndex, Expression: expression, Exported: true}
	if err := col.compile(); err != nil {
		m.fail(err)
	}

	m.items = append(m.items, item{column: col})

	return &ColumnBuilder{m: m, col: col}
}

// Constant adds a column that writes value for every record.
func (m *Map) Constant(name, value string) *ColumnBuilder {
	col := &Column{Name: name, Index: NoIndex, Constant: &value, Exported: true}
	m.items = append(m.items, item{column: col})

	return &ColumnBuilder{m: m, col: col}
}

// Ignore excludes the member from output.
func (m *Map) Ignore(member string) *Map {
	if ref := m.findReference(member); ref != nil {
		m.removeReference(ref)
		return m
	}

	m.Column(member).Ignore()

	return m
}

// Reference flattens the struct at member into this mapping, with names
// prefixed by prefix. A nil ref uses whatever mapping the registry resolves
// for the member's type.
func (m *Map) Reference(member string, ref *Map, prefix string) *Map {
	if existing := m.findReference(member); existing != nil {
		existing.Map = ref
		existing.Prefix = prefix

		return m
	}

	if m.err != nil {
		return m
	}

	path, err := ParsePath(member)
	if err != nil {
		m.fail(err)
		return m
	}

	acc, err := path.resolve(m.typ)
	if err != nil {
		m.fail(err)
		return m
	}

	target := derefType(acc.typ)
	if target.Kind() != reflect.Struct {
		m.fail(fmt.Errorf("reference %s: %w: %s", member, ErrNotStruct, acc.typ))
		return m
	}

	if ref != nil && ref.typ != target {
		m.fail(fmt.Errorf("reference %s: mapping is for %s, field is %s", member, ref.typ, target))
		return m
	}

	m.items = append(m.items, item{reference: &Reference{
		Member:   member,
		Path:     acc.index,
		Type:     target,
		Prefix:   prefix,
		Map:      ref,
		exported: acc.exported,
	}})

	return m
}

func (m *Map) findColumn(member string) *Column {
	if member == "" {
		return nil
	}

	for _, it := range m.items {
		if it.column != nil && it.column.Member == member {
			return it.column
		}
	}

	return nil
}

func (m *Map) findReference(member string) *Reference {
	for _, it := range m.items {
		if it.reference != nil && it.reference.Member == member {
			return it.reference
		}
	}

	return nil
}

func (m *Map) removeReference(ref *Reference) {
	for i, it := range m.items {
		if it.reference == ref {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

func (m *Map) fail(err error) {
	if m.err == nil {
		m.err = fmt.Errorf("mapping %s: %w", m.typ, err)
	}
}

// ColumnBuilder configures one column of a Map.
type ColumnBuilder struct {
	m   *Map
	col *Column
}

// Name sets the header text.
func (b *ColumnBuilder) Name(name string) *ColumnBuilder {
	b.col.Name = name
	return b
}

// Index sets the declared position.
func (b *ColumnBuilder) Index(index int) *ColumnBuilder {
	if index < 0 && index != NoIndex {
		b.m.fail(fmt.Errorf("column %s: negative index %d", b.col.Name, index))
		return b
	}

	b.col.Index = index

	return b
}

// Format sets the converter format.
func (b *ColumnBuilder) Format(format string) *ColumnBuilder {
	b.col.Format = format
	return b
}

// Converter overrides the converter for this column.
func (b *ColumnBuilder) Converter(conv primitive.Converter) *ColumnBuilder {
	b.col.Converter = conv
	return b
}

// Constant makes the column write value for every record.
func (b *ColumnBuilder) Constant(value string) *ColumnBuilder {
	b.col.Constant = &value
	return b
}

// Ignore excludes the column from output.
func (b *ColumnBuilder) Ignore() *ColumnBuilder {
	b.col.Ignore = true
	return b
}

// Column returns the column being built.
func (b *ColumnBuilder) Column() *Column {
	return b.col
}
