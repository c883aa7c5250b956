package options

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flag is a set of boolean writer behaviours.
type Flag int

const (
	FlagHeader            Flag = 1 << iota // write a header row before the first record
	FlagQuoteAll                           // quote every field
	FlagQuoteNone                          // never quote, not even fields that need it
	FlagTrim                               // trim surrounding whitespace before quoting is decided
	FlagEscapeLeadingZero                  // write 0123 as ="0123" so spreadsheets keep the zero
	FlagExcelSeparator                     // write a sep=<delimiter> row first
	FlagIncludePrivate                     // map unexported struct fields too
	FlagAllowComments                      // permit WriteComment

	FlagAll  Flag = (1 << iota) - 1 // all flags combined
	FlagNone Flag = 0               // no flags selected
)

// FlagDefault is the flag set of Default().
const FlagDefault = FlagHeader

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagHeader, "header"},
	{FlagQuoteAll, "quote-all"},
	{FlagQuoteNone, "quote-none"},
	{FlagTrim, "trim"},
	{FlagEscapeLeadingZero, "escape-leading-zero"},
	{FlagExcelSeparator, "excel-separator"},
	{FlagIncludePrivate, "include-private"},
	{FlagAllowComments, "allow-comments"},
}

// Has reports whether every flag in other is set.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// Names returns the names of the set flags in declaration order.
func (f Flag) Names() []string {
	var names []string

	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}

	return names
}

func (f Flag) String() string {
	if f == FlagNone {
		return "none"
	}

	return strings.Join(f.Names(), "|")
}

// ParseFlag returns the flag with the given name.
func ParseFlag(name string) (Flag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, nil
		}
	}

	return FlagNone, fmt.Errorf("unknown flag %q", name)
}

// ParseFlags combines the named flags.
func ParseFlags(names ...string) (Flag, error) {
	var f Flag

	for _, name := range names {
		one, err := ParseFlag(name)
		if err != nil {
			return FlagNone, err
		}

		f |= one
	}

	return f, nil
}

// UnmarshalYAML accepts a single flag name or a list of names.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	var names []string

	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}

		if name != "" {
			names = []string{name}
		}

	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}

	default:
		return fmt.Errorf("flags: expected string or array, got %v", node.Kind)
	}

	parsed, err := ParseFlags(names...)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	*f = parsed

	return nil
}

// MarshalYAML writes the flag set as a list of names.
func (f Flag) MarshalYAML() (any, error) {
	names := f.Names()
	if names == nil {
		return []string{}, nil
	}

	return names, nil
}
