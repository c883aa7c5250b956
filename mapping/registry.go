package mapping

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"csvcaster/internal/common"
	"csvcaster/internal/diagnostic"
)

// Registry holds declared mappings and memoizes auto mappings.
type Registry struct {
	declared map[reflect.Type]*Map
	auto     map[reflect.Type]*Map
	known    []reflect.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		declared: make(map[reflect.Type]*Map),
		auto:     make(map[reflect.Type]*Map),
	}
}

// Register declares m as the mapping of its type, replacing any previous one.
func (r *Registry) Register(m *Map) error {
	if err := m.Err(); err != nil {
		return err
	}

	r.declared[m.typ] = m
	r.addKnown(m.typ)

	return nil
}

// Known makes t available to YAML mapping files without declaring a map.
func (r *Registry) Known(types ...reflect.Type) {
	for _, t := range types {
		r.addKnown(derefType(t))
	}
}

// Lookup returns the declared mapping of t.
func (r *Registry) Lookup(t reflect.Type) (*Map, bool) {
	m, ok := r.declared[derefType(t)]
	return m, ok
}

// Unregister drops the declared mapping of t; t falls back to AutoMap.
func (r *Registry) Unregister(t reflect.Type) {
	delete(r.declared, derefType(t))
}

// Map returns the declared mapping of t, or its auto mapping.
func (r *Registry) Map(t reflect.Type) (*Map, error) {
	t = derefType(t)

	if m, ok := r.declared[t]; ok {
		return m, nil
	}

	if m, ok := r.auto[t]; ok {
		return m, nil
	}

	m, err := AutoMap(t)
	if err != nil {
		return nil, err
	}

	r.auto[t] = m

	return m, nil
}

// Resolution is the flattened, ordered column list of one type.
type Resolution struct {
	Type        reflect.Type
	Columns     []*Column
	Diagnostics diagnostic.Diagnostics
}

// Names returns the header names of the resolved columns.
func (res *Resolution) Names() []string {
	names := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		names[i] = c.Name
	}

	return names
}

// Resolve flattens the mapping of t into its writable columns. Non-struct
// types resolve to no columns. Unexported members are dropped unless
// includePrivate is set.
func (r *Registry) Resolve(t reflect.Type, includePrivate bool) (*Resolution, error) {
	t = derefType(t)
	res := &Resolution{Type: t}

	if t.Kind() != reflect.Struct {
		return res, nil
	}

	m, err := r.Map(t)
	if err != nil {
		return nil, err
	}

	fl := flattener{
		registry:       r,
		includePrivate: includePrivate,
		typeName:       t.String(),
		diags:          &res.Diagnostics,
	}

	if err := fl.walk(m, nil, "", true, []reflect.Type{t}); err != nil {
		return nil, err
	}

	res.Columns = order(fl.columns)

	for _, name := range common.Duplicates(res.Names()) {
		res.Diagnostics.AddWarning(diagnostic.CodeDuplicateName,
			fmt.Sprintf("column name %q is used more than once", name), t.String(), name)
	}

	if len(res.Columns) == 0 {
		res.Diagnostics.AddError(diagnostic.CodeNoColumns, "type has no writable columns", t.String(), "")
	}

	return res, nil
}

type flattener struct {
	registry       *Registry
	includePrivate bool
	typeName       string
	diags          *diagnostic.Diagnostics
	columns        []*Column
}

// walk appends the columns of m, read through base, depth first. stack holds
// the types on the current reference chain.
func (fl *flattener) walk(m *Map, base []int, prefix string, exported bool, stack []reflect.Type) error {
	for _, it := range m.items {
		if it.column != nil {
			fl.column(it.column, m.typ, base, prefix, exported)
			continue
		}

		ref := it.reference
		member := prefix + ref.Member

		if !(exported && ref.exported) && !fl.includePrivate {
			continue
		}

		if slices.Contains(stack, ref.Type) {
			fl.diags.AddWarning(diagnostic.CodeCycle,
				fmt.Sprintf("reference to %s is already on the path, skipped", ref.Type), fl.typeName, member)

			continue
		}

		nested := ref.Map
		if nested == nil {
			var err error

			nested, err = fl.registry.Map(ref.Type)
			if err != nil {
				return fmt.Errorf("reference %s: %w", member, err)
			}
		}

		path := append(slices.Clone(base), ref.Path...)
		if err := fl.walk(nested, path, prefix+ref.Prefix, exported && ref.exported, append(stack, ref.Type)); err != nil {
			return err
		}
	}

	return nil
}

func (fl *flattener) column(col *Column, owner reflect.Type, base []int, prefix string, exported bool) {
	if col.Ignore {
		return
	}

	if !col.Readable() {
		fl.diags.AddInfo(diagnostic.CodeUnreadable, "column has no value source, skipped", fl.typeName, prefix+col.Name)
		return
	}

	cp := col.clone()
	cp.Name = prefix + col.Name
	cp.Exported = exported && col.Exported

	if !cp.Exported && !fl.includePrivate {
		return
	}

	switch {
	case col.Computed():
		cp.Path = slices.Clone(base)
		cp.Type = owner
	case col.Path != nil:
		cp.Path = append(slices.Clone(base), col.Path...)
	}

	fl.columns = append(fl.columns, cp)
}

// order sorts columns by declared index, falling back to traversal position.
// On equal keys a declared index goes first.
func order(cols []*Column) []*Column {
	type keyed struct {
		col      *Column
		key      int
		declared bool
	}

	ks := make([]keyed, len(cols))
	for i, c := range cols {
		ks[i] = keyed{col: c, key: i}
		if c.Index != NoIndex {
			ks[i].key = c.Index
			ks[i].declared = true
		}
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}

		switch {
		case a.declared && !b.declared:
			return -1
		case b.declared && !a.declared:
			return 1
		default:
			return 0
		}
	})

	out := make([]*Column, len(ks))
	for i, k := range ks {
		out[i] = k.col
	}

	return out
}

func (r *Registry) addKnown(t reflect.Type) {
	if !slices.Contains(r.known, t) {
		r.known = append(r.known, t)
	}
}
