package mapping

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"csvcaster/internal/common"
)

// File is the root of a YAML mapping file.
type File struct {
	// Version of the mapping schema.
	Version string `yaml:"version,omitempty"`
	// Mappings lists one entry per record type.
	Mappings []TypeMapping `yaml:"mappings"`
}

// TypeMapping declares the columns of one record type.
type TypeMapping struct {
	// Type identifier ("store.Order", full import path, or bare name).
	Type string `yaml:"type"`
	// Auto starts from the struct tag mapping instead of an empty one.
	Auto bool `yaml:"auto,omitempty"`
	// Columns are applied in order.
	Columns []ColumnSpec `yaml:"columns,omitempty"`
	// Ignore lists members left out of the output.
	Ignore StringOrArray `yaml:"ignore,omitempty"`
	// References flatten nested structs.
	References []ReferenceSpec `yaml:"references,omitempty"`
}

// ColumnSpec is one column entry. Exactly one of Member, Expr or Constant is set.
type ColumnSpec struct {
	Member   string  `yaml:"member,omitempty"`
	Name     string  `yaml:"name,omitempty"`
	Index    *int    `yaml:"index,omitempty"`
	Format   string  `yaml:"format,omitempty"`
	Expr     string  `yaml:"expr,omitempty"`
	Constant *string `yaml:"constant,omitempty"`
}

// ReferenceSpec flattens the struct at Member behind Prefix.
type ReferenceSpec struct {
	Member string `yaml:"member"`
	Prefix string `yaml:"prefix,omitempty"`
}

// StringOrArray accepts a single string or a list of strings.
type StringOrArray []string

// UnmarshalYAML accepts either a scalar or a sequence.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		*s = arr

		return nil
	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise a list.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// LoadFile reads and parses a YAML mapping file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return ParseFile(data)
}

// ParseFile parses and checks YAML mapping data.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	if f.Version == "" {
		f.Version = "1"
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Marshal serializes a mapping file to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

func (f *File) validate() error {
	var errs []error

	for i, tm := range f.Mappings {
		if tm.Type == "" {
			errs = append(errs, fmt.Errorf("mappings[%d]: type is required", i))
			continue
		}

		for j, c := range tm.Columns {
			sources := 0

			for _, set := range []bool{c.Member != "", c.Expr != "", c.Constant != nil} {
				if set {
					sources++
				}
			}

			switch {
			case sources != 1:
				errs = append(errs, fmt.Errorf("%s: columns[%d]: exactly one of member, expr, constant is required", tm.Type, j))
			case c.Member == "" && c.Name == "":
				errs = append(errs, fmt.Errorf("%s: columns[%d]: name is required for expr and constant columns", tm.Type, j))
			case c.Index != nil && *c.Index < 0:
				errs = append(errs, fmt.Errorf("%s: columns[%d]: negative index %d", tm.Type, j, *c.Index))
			}
		}

		for j, r := range tm.References {
			if r.Member == "" {
				errs = append(errs, fmt.Errorf("%s: references[%d]: member is required", tm.Type, j))
			}
		}
	}

	return errors.Join(errs...)
}

// LoadYAML parses a mapping file and registers a map for every entry.
// Entries name Go types; types passes the candidates in addition to the
// types already registered or marked Known.
func (r *Registry) LoadYAML(data []byte, types ...reflect.Type) error {
	r.Known(types...)

	f, err := ParseFile(data)
	if err != nil {
		return err
	}

	return r.Apply(f)
}

// Apply registers a map for every entry of f.
func (r *Registry) Apply(f *File) error {
	for _, tm := range f.Mappings {
		t := r.resolveTypeID(tm.Type)
		if t == nil {
			return fmt.Errorf("mapping %s: unknown type", tm.Type)
		}

		m, err := buildMap(t, tm)
		if err != nil {
			return err
		}

		if err := r.Register(m); err != nil {
			return err
		}
	}

	return nil
}

func buildMap(t reflect.Type, tm TypeMapping) (*Map, error) {
	m := NewMap(t)

	if tm.Auto {
		var err error
		if m, err = AutoMap(t); err != nil {
			return nil, err
		}
	}

	for _, c := range tm.Columns {
		var b *ColumnBuilder

		switch {
		case c.Expr != "":
			b = m.Computed(c.Name, c.Expr)
		case c.Constant != nil:
			b = m.Constant(c.Name, *c.Constant)
		default:
			b = m.Column(c.Member)
			if c.Name != "" {
				b.Name(c.Name)
			}

			if c.Format != "" {
				b.Format(c.Format)
			}
		}

		if c.Index != nil {
			b.Index(*c.Index)
		}
	}

	for _, member := range tm.Ignore {
		m.Ignore(member)
	}

	for _, ref := range tm.References {
		m.Reference(ref.Member, nil, ref.Prefix)
	}

	return m, m.Err()
}

// resolveTypeID finds a known type by identifier:
// - "store.Order" (package name)
// - "example.com/app/store.Order" (full)
// - "Order" (name only).
func (r *Registry) resolveTypeID(id string) reflect.Type {
	lastDot := strings.LastIndex(id, ".")
	if lastDot < 0 {
		for _, t := range r.known {
			if t.Name() == id {
				return t
			}
		}

		return nil
	}

	pkg, name := id[:lastDot], id[lastDot+1:]
	if pkg == "" || name == "" {
		return nil
	}

	// exact match first, then the short package forms
	for _, t := range r.known {
		if t.Name() == name && t.PkgPath() == pkg {
			return t
		}
	}

	for _, t := range r.known {
		if t.Name() != name {
			continue
		}

		if strings.HasSuffix(t.PkgPath(), "/"+pkg) || common.PkgAlias(t.PkgPath()) == pkg {
			return t
		}
	}

	return nil
}
