package plan

import (
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/text/language"

	"csvcaster/internal/diagnostic"
	"csvcaster/mapping"
	"csvcaster/primitive"
	"csvcaster/record"
)

// ErrNoColumns is returned for struct types and dynamic records with nothing to write.
var ErrNoColumns = errors.New("no writable columns")

// Row receives the fields of the record being written.
type Row interface {
	primitive.FieldWriter
	// Culture is handed to converters.
	Culture() language.Tag
}

// Key identifies a plan: the record type, and for dynamic records the shape.
type Key struct {
	Type  reflect.Type
	Shape string
}

// Kind tells how a plan reads its records.
type Kind int

const (
	KindStruct Kind = iota
	KindPrimitive
	KindDynamic
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindPrimitive:
		return "primitive"
	case KindDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// Plan writes records of one type or shape.
type Plan struct {
	Key  Key
	Kind Kind
	// Header holds the column names; empty for primitives.
	Header []string
	// Columns are the resolved columns of a struct plan.
	Columns []*mapping.Column
	// Diagnostics collected while resolving the mapping.
	Diagnostics diagnostic.Diagnostics

	steps []step
	// private columns read through unexported fields, which needs an addressable record
	private bool
}

type step func(rec reflect.Value, row Row) error

// Run writes rec to row.
func (p *Plan) Run(rec reflect.Value, row Row) error {
	for rec.Kind() == reflect.Interface && !rec.IsNil() {
		rec = rec.Elem()
	}

	if p.private && rec.Kind() == reflect.Struct && !rec.CanAddr() {
		cp := reflect.New(rec.Type()).Elem()
		cp.Set(rec)
		rec = cp
	}

	for _, s := range p.steps {
		if err := s(rec, row); err != nil {
			return err
		}
	}

	return nil
}

func convContext(row Row, format string) primitive.Context {
	return primitive.Context{Culture: row.Culture(), Format: format, Row: row}
}

func emit(row Row, field string, ok bool, err error) error {
	if err != nil {
		return err
	}

	if ok {
		row.WriteField(field)
	}

	return nil
}

func (c *Cache) compileStruct(key Key) (*Plan, error) {
	res, err := c.registry.Resolve(key.Type, c.includePrivate)
	if err != nil {
		return nil, err
	}

	if err := res.Diagnostics.Err(); err != nil {
		if len(res.Columns) == 0 {
			return nil, fmt.Errorf("%w: %w", ErrNoColumns, err)
		}

		return nil, err
	}

	p := &Plan{
		Key:         key,
		Kind:        KindStruct,
		Header:      res.Names(),
		Columns:     res.Columns,
		Diagnostics: res.Diagnostics,
	}

	for _, col := range res.Columns {
		p.steps = append(p.steps, c.columnStep(col))
		p.private = p.private || !col.Exported
	}

	return p, nil
}

func (c *Cache) columnStep(col *mapping.Column) step {
	switch {
	case col.Constant != nil:
		value := *col.Constant

		return func(_ reflect.Value, row Row) error {
			row.WriteField(value)
			return nil
		}
	case col.Computed():
		return func(rec reflect.Value, row Row) error {
			out, err := col.Eval(col.Value(rec))
			if err != nil {
				return err
			}

			field, ok, err := c.converters.Convert(out, convContext(row, col.Format))
			if err != nil {
				return fmt.Errorf("column %s: %w", col.Name, err)
			}

			return emit(row, field, ok, nil)
		}
	}

	conv := col.Converter
	if conv == nil {
		conv = c.converters.Lookup(col.Type)
	}

	return func(rec reflect.Value, row Row) error {
		field, ok, err := conv.ConvertToString(col.Value(rec), convContext(row, col.Format))
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name, err)
		}

		return emit(row, field, ok, nil)
	}
}

func (c *Cache) compilePrimitive(key Key) *Plan {
	conv := c.converters.Lookup(key.Type)

	return &Plan{
		Key:  key,
		Kind: KindPrimitive,
		steps: []step{func(rec reflect.Value, row Row) error {
			for rec.Kind() == reflect.Pointer {
				if rec.IsNil() {
					row.WriteField("")
					return nil
				}

				rec = rec.Elem()
			}

			field, ok, err := conv.ConvertToString(rec, convContext(row, ""))

			return emit(row, field, ok, err)
		}},
	}
}

func (c *Cache) compileDynamic(key Key, shape record.Shape) (*Plan, error) {
	if shape.Len() == 0 {
		return nil, fmt.Errorf("%w: %s record without members", ErrNoColumns, key.Type)
	}

	p := &Plan{
		Key:    key,
		Kind:   KindDynamic,
		Header: shape.Names(),
	}

	for _, name := range p.Header {
		p.steps = append(p.steps, func(rec reflect.Value, row Row) error {
			value, _ := record.Get(rec.Interface(), name)

			field, ok, err := c.converters.Convert(value, convContext(row, ""))
			if err != nil {
				return fmt.Errorf("member %s: %w", name, err)
			}

			return emit(row, field, ok, nil)
		})
	}

	return p, nil
}
