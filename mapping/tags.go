package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// TagKey is the struct tag key read by AutoMap.
const TagKey = "csv"

// TagError reports a malformed csv struct tag.
type TagError struct {
	Type  reflect.Type
	Field string
	Tag   string
	Err   error
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s.%s: invalid tag %q: %v", e.Type, e.Field, e.Tag, e.Err)
}

func (e *TagError) Unwrap() error {
	return e.Err
}

// Tag is a parsed csv struct tag.
type Tag struct {
	Name   string
	Index  int
	Format string
	Prefix string
	Ignore bool
}

// ParseTag parses `csv:"name,index=N,format=F,prefix=P,ignore"`. Values may
// be single quoted to contain commas.
func ParseTag(tag string) (Tag, error) {
	ft := Tag{Index: NoIndex}

	if tag == "-" {
		ft.Ignore = true
		return ft, nil
	}

	parts, err := splitTag(tag)
	if err != nil {
		return ft, err
	}

	if len(parts) == 0 {
		return ft, nil
	}

	ft.Name = unquoteValue(strings.TrimSpace(parts[0]))

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = unquoteValue(strings.TrimSpace(value))

		switch key {
		case "ignore":
			if hasValue {
				return ft, errors.New("ignore takes no value")
			}

			ft.Ignore = true
		case "index":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return ft, fmt.Errorf("index must be a non-negative integer, got %q", value)
			}

			ft.Index = n
		case "format":
			ft.Format = value
		case "prefix":
			ft.Prefix = value
		default:
			return ft, fmt.Errorf("unknown key %q", key)
		}
	}

	return ft, nil
}

func splitTag(tag string) ([]string, error) {
	var (
		parts   []string
		current strings.Builder
		quoted  bool
	)

	for i := 0; i < len(tag); i++ {
		c := tag[i]

		switch {
		case c == '\'':
			quoted = !quoted
			current.WriteByte(c)
		case c == ',' && !quoted:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}

	if quoted {
		return nil, errors.New("unterminated quote")
	}

	if tag != "" {
		parts = append(parts, current.String())
	}

	return parts, nil
}

func unquoteValue(value string) string {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}

	return value
}
