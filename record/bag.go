package record

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dynamic is a record that lists its own members.
type Dynamic interface {
	// Names returns the member names in output order.
	Names() []string
	// Get returns the value of the named member.
	Get(name string) (any, bool)
}

// Field is one member of a Bag.
type Field struct {
	Name  string
	Value any
}

// Bag is an ordered association list of member names and values.
// The zero value is an empty bag ready to use.
type Bag struct {
	fields []Field
	index  map[string]int
}

// NewBag builds a bag from fields, in order. Later duplicates overwrite earlier values.
func NewBag(fields ...Field) *Bag {
	b := &Bag{}
	for _, f := range fields {
		b.Set(f.Name, f.Value)
	}

	return b
}

// Set assigns a member. A new name is appended; an existing one keeps its position.
func (b *Bag) Set(name string, value any) *Bag {
	if b.index == nil {
		b.index = make(map[string]int)
	}

	if i, ok := b.index[name]; ok {
		b.fields[i].Value = value
		return b
	}

	b.index[name] = len(b.fields)
	b.fields = append(b.fields, Field{Name: name, Value: value})

	return b
}

func (b Bag) Names() []string {
	names := make([]string, len(b.fields))
	for i, f := range b.fields {
		names[i] = f.Name
	}

	return names
}

func (b Bag) Get(name string) (any, bool) {
	i, ok := b.index[name]
	if !ok {
		return nil, false
	}

	return b.fields[i].Value, true
}

// Len returns the number of members.
func (b Bag) Len() int {
	return len(b.fields)
}

// Fields returns a copy of the members.
func (b Bag) Fields() []Field {
	return append([]Field(nil), b.fields...)
}

// UnmarshalYAML decodes a YAML mapping keeping the key order.
func (b *Bag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping for a record, got %v", node.Line, node.Kind)
	}

	*b = Bag{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("line %d: invalid member name: %w", node.Content[i].Line, err)
		}

		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("line %d: member %s: %w", node.Content[i+1].Line, name, err)
		}

		b.Set(name, value)
	}

	return nil
}
