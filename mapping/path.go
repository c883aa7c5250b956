package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// FieldPath is a parsed member path such as "Customer.Address.City".
type FieldPath struct {
	Segments []string
}

// String returns the dotted form of the path.
func (p FieldPath) String() string {
	return strings.Join(p.Segments, ".")
}

// ParsePath parses a dotted member path.
func ParsePath(path string) (FieldPath, error) {
	if path == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []string

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return FieldPath{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if strings.HasSuffix(part, "[]") {
			return FieldPath{}, fmt.Errorf("invalid path %q: slice elements cannot be columns", path)
		}

		if !isValidIdent(part) {
			return FieldPath{}, fmt.Errorf("invalid path %q: invalid identifier %q", path, part)
		}

		segments = append(segments, part)
	}

	return FieldPath{Segments: segments}, nil
}

// accessor is where a path leads inside a struct type.
type accessor struct {
	index    []int
	typ      reflect.Type
	exported bool
}

// resolve walks the path through t, following pointers and promoted fields.
func (p FieldPath) resolve(t reflect.Type) (accessor, error) {
	acc := accessor{typ: t, exported: true}

	for _, seg := range p.Segments {
		st := derefType(acc.typ)
		if st.Kind() != reflect.Struct {
			return accessor{}, fmt.Errorf("path %q: %s is not a struct", p, acc.typ)
		}

		f, ok := st.FieldByName(seg)
		if !ok {
			return accessor{}, fmt.Errorf("path %q: %s has no field %s", p, st, seg)
		}

		acc.index = append(acc.index, f.Index...)
		acc.typ = f.Type
		acc.exported = acc.exported && f.IsExported()
	}

	return acc, nil
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// isValidIdent checks if a string is a valid Go identifier.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			// First character must be letter or underscore
			if !isLetter(r) && r != '_' {
				return false
			}
		} else {
			// Subsequent characters can be letter, digit, or underscore
			if !isLetter(r) && !isDigit(r) && r != '_' {
				return false
			}
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
