package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"csvcaster/primitive"
)

// NoIndex marks a column without a declared index.
const NoIndex = -1

var ErrNotInterfaceable = errors.New("computed column needs an exported record type")

// Column describes one output column of a mapped type.
type Column struct {
	// Name is the header text.
	Name string
	// Member is the dotted member path the column reads, empty for computed and constant columns.
	Member string
	// Path is the chain of struct field indexes from the record to the value.
	// For a computed column it leads to the struct the expression runs against.
	Path []int
	// Type is the static type of the value; nil for computed and constant columns.
	Type reflect.Type
	// Index is the declared position, NoIndex when unset.
	Index int
	// Format is handed to the converter (time layout, fmt verb).
	Format string
	// Converter overrides the converter looked up by Type.
	Converter primitive.Converter
	// Constant, when set, is written for every record.
	Constant *string
	// Expression is the source of a computed column.
	Expression string
	// Ignore excludes the column from output.
	Ignore bool
	// Exported is false when the value is reached through an unexported field.
	Exported bool

	program *vm.Program
}

// Readable reports whether the column has any way to produce a value.
func (c *Column) Readable() bool {
	return c.Path != nil || c.program != nil || c.Constant != nil
}

// Computed reports whether the column is evaluated from an expression.
func (c *Column) Computed() bool {
	return c.program != nil
}

// Value reads the column off rec, a struct value. A nil pointer on the way
// yields the zero value of the column type.
func (c *Column) Value(rec reflect.Value) reflect.Value {
	v := rec
	for _, i := range c.Path {
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Zero(c.Type)
			}

			v = v.Elem()
		}

		v = v.Field(i)
	}

	return v
}

// Eval runs the expression of a computed column with env, the struct the
// column belongs to, as environment.
func (c *Column) Eval(env reflect.Value) (any, error) {
	rec := env
	for rec.Kind() == reflect.Pointer {
		if rec.IsNil() {
			rec = reflect.Zero(rec.Type().Elem())
			continue
		}

		rec = rec.Elem()
	}

	if !rec.CanInterface() {
		return nil, fmt.Errorf("%w: %s", ErrNotInterfaceable, rec.Type())
	}

	out, err := expr.Run(c.program, rec.Interface())
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", c.Name, err)
	}

	return out, nil
}

func (c *Column) compile() error {
	program, err := expr.Compile(c.Expression)
	if err != nil {
		return fmt.Errorf("column %s: invalid expression: %w", c.Name, err)
	}

	c.program = program

	return nil
}

func (c *Column) clone() *Column {
	cp := *c
	cp.Path = slices.Clone(c.Path)

	return &cp
}
