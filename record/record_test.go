package record

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBag(t *testing.T) {
	t.Parallel()

	var b Bag
	b.Set("Id", 1).Set("Name", "one").Set("Id", 2)

	assert.Equal(t, []string{"Id", "Name"}, b.Names())
	assert.Equal(t, 2, b.Len())

	v, ok := b.Get("Id")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = b.Get("Missing")
	assert.False(t, ok)

	fields := b.Fields()
	fields[0].Name = "changed"
	assert.Equal(t, "Id", b.Names()[0])
}

func TestNewBag(t *testing.T) {
	t.Parallel()

	b := NewBag(Field{"b", 1}, Field{"a", 2}, Field{"b", 3})
	assert.Equal(t, []string{"b", "a"}, b.Names())

	v, _ := b.Get("b")
	assert.Equal(t, 3, v)
}

func TestBagUnmarshalYAMLKeepsOrder(t *testing.T) {
	t.Parallel()

	var rows []Bag
	err := yaml.Unmarshal([]byte(`
- {zeta: 1, alpha: two, mid: true}
- zeta: 3
  alpha: null
`), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rows[0].Names())
	v, _ := rows[0].Get("mid")
	assert.Equal(t, true, v)

	v, ok := rows[1].Get("alpha")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestBagUnmarshalYAMLRejectsScalars(t *testing.T) {
	t.Parallel()

	var rows []Bag
	err := yaml.Unmarshal([]byte("- 42\n"), &rows)
	assert.ErrorContains(t, err, "expected a mapping")
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	t.Run("bag", func(t *testing.T) {
		t.Parallel()

		shape, ok := Discover(NewBag(Field{"Id", 1}, Field{"Name", "x"}))
		require.True(t, ok)
		assert.Equal(t, []string{"Id", "Name"}, shape.Names())
		assert.Equal(t, 2, shape.Len())
	})

	t.Run("bag value", func(t *testing.T) {
		t.Parallel()

		shape, ok := Discover(*NewBag(Field{"Id", 1}))
		require.True(t, ok)
		assert.Equal(t, []string{"Id"}, shape.Names())
	})

	t.Run("map sorted", func(t *testing.T) {
		t.Parallel()

		shape, ok := Discover(map[string]int{"b": 1, "a": 2, "c": 3})
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b", "c"}, shape.Names())
	})

	t.Run("not dynamic", func(t *testing.T) {
		t.Parallel()

		for _, v := range []any{nil, 3, struct{ A int }{}, map[int]string{}, (*Bag)(nil)} {
			_, ok := Discover(v)
			assert.False(t, ok, "%T", v)
		}
	})
}

func TestShapeKey(t *testing.T) {
	t.Parallel()

	a := NewShape([]string{"Id", "Name"})
	b, _ := Discover(NewBag(Field{"Id", 9}, Field{"Name", "z"}))
	c := NewShape([]string{"Name", "Id"})

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), c.Key())
	assert.Equal(t, []string{"Name", "Id"}, c.Names())
	assert.NotEqual(t, a.Key(), NewShape([]string{"Id"}).Key())
	assert.NotEqual(t, NewShape([]string{"a,b"}).Key(), NewShape([]string{"a", "b"}).Key())
}

func TestGet(t *testing.T) {
	t.Parallel()

	type key string

	v, ok := Get(map[key]any{"a": 1}, "a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = Get(map[string]any{}, "a")
	assert.False(t, ok)

	v, ok = Get(NewBag(Field{"x", "y"}), "x")
	assert.True(t, ok)
	assert.Equal(t, "y", v)

	_, ok = Get(42, "x")
	assert.False(t, ok)
}

func TestIsDynamic(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDynamic(reflect.TypeFor[Bag]()))
	assert.True(t, IsDynamic(reflect.TypeFor[*Bag]()))
	assert.True(t, IsDynamic(reflect.TypeFor[map[string]any]()))
	assert.False(t, IsDynamic(reflect.TypeFor[map[int]any]()))
	assert.False(t, IsDynamic(reflect.TypeFor[struct{}]()))
	assert.False(t, IsDynamic(nil))
}
