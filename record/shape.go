package record

import (
	"reflect"
	"slices"
	"strings"
)

var dynamicType = reflect.TypeFor[Dynamic]()

// Shape is the ordered set of member names of a dynamic record.
type Shape struct {
	names []string
	key   string
}

// NewShape returns the shape with the given member names. The key does not
// depend on their order.
func NewShape(names []string) Shape {
	names = slices.Clone(names)

	sorted := slices.Clone(names)
	slices.Sort(sorted)

	return Shape{names: names, key: strings.Join(sorted, "\x1f")}
}

// Names returns a copy of the member names.
func (s Shape) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of members.
func (s Shape) Len() int {
	return len(s.names)
}

// Key identifies the member set; the same names in any order give the same key.
func (s Shape) Key() string {
	return s.key
}

// IsDynamic reports whether values of type t carry their own member names.
func IsDynamic(t reflect.Type) bool {
	if t == nil {
		return false
	}

	if t.Implements(dynamicType) {
		return true
	}

	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

// Discover returns the shape of a dynamic record. Map keys are sorted since
// maps carry no order.
func Discover(v any) (Shape, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil()) {
		return Shape{}, false
	}

	if d, ok := v.(Dynamic); ok {
		return NewShape(d.Names()), true
	}

	if !IsDynamic(rv.Type()) {
		return Shape{}, false
	}

	names := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		names = append(names, k.String())
	}

	slices.Sort(names)

	return NewShape(names), true
}

// Get reads a member of a dynamic record by name.
func Get(v any, name string) (any, bool) {
	if d, ok := v.(Dynamic); ok {
		return d.Get(name)
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	val := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}

	return val.Interface(), true
}
