package mapping

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile(t *testing.T) {
	t.Parallel()

	data := `
mappings:
  - type: mapping.Order
    auto: true
    columns:
      - member: Total
        name: total
        format: "%.2f"
      - name: channel
        constant: web
      - name: double
        expr: Total * 2
        index: 9
    ignore: Placed
    references:
      - member: Customer
        prefix: cust_
`

	f, err := ParseFile([]byte(data))
	require.NoError(t, err)

	assert.Equal(t, "1", f.Version)
	require.Len(t, f.Mappings, 1)

	tm := f.Mappings[0]
	assert.Equal(t, "mapping.Order", tm.Type)
	assert.True(t, tm.Auto)
	require.Len(t, tm.Columns, 3)
	assert.Equal(t, "%.2f", tm.Columns[0].Format)
	require.NotNil(t, tm.Columns[1].Constant)
	assert.Equal(t, "web", *tm.Columns[1].Constant)
	require.NotNil(t, tm.Columns[2].Index)
	assert.Equal(t, 9, *tm.Columns[2].Index)
	assert.Equal(t, StringOrArray{"Placed"}, tm.Ignore)
	assert.Equal(t, []ReferenceSpec{{Member: "Customer", Prefix: "cust_"}}, tm.References)
}

func TestParseFile_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"missing type": `
mappings:
  - columns: [{member: ID}]`,
		"two sources": `
mappings:
  - type: Order
    columns: [{member: ID, expr: "1"}]`,
		"no source": `
mappings:
  - type: Order
    columns: [{name: x}]`,
		"unnamed constant": `
mappings:
  - type: Order
    columns: [{constant: x}]`,
		"negative index": `
mappings:
  - type: Order
    columns: [{member: ID, index: -1}]`,
		"reference member": `
mappings:
  - type: Order
    references: [{prefix: x}]`,
		"not yaml": `mappings: [`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseFile([]byte(data))
			require.Error(t, err)
		})
	}
}

func TestRegistry_LoadYAML(t *testing.T) {
	t.Parallel()

	data := `
mappings:
  - type: mapping.Order
    auto: true
    columns:
      - member: Total
        name: total
      - name: channel
        constant: web
    ignore: [Placed]
    references:
      - member: Customer
        prefix: cust_
  - type: Item
    columns:
      - member: Name
        name: item
      - member: ID
        index: 0
`

	r := NewRegistry()
	require.NoError(t, r.LoadYAML([]byte(data), reflect.TypeFor[Order](), reflect.TypeFor[*Item]()))

	assert.Equal(t, []string{
		"order_id", "cust_Name", "cust_Email", "cust_addr_Street", "cust_addr_city", "total", "channel",
	}, resolveNames(t, r, reflect.TypeFor[Order](), false))

	assert.Equal(t, []string{"ID", "item"}, resolveNames(t, r, reflect.TypeFor[Item](), false))
}

func TestRegistry_LoadYAML_Errors(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Known(reflect.TypeFor[Order]())

	err := r.LoadYAML([]byte("mappings:\n  - type: warehouse.Order\n"))
	require.ErrorContains(t, err, "unknown type")

	err = r.LoadYAML([]byte("mappings:\n  - type: Order\n    columns: [{member: Nope}]\n"))
	require.ErrorContains(t, err, "no field Nope")

	_, ok := r.Lookup(reflect.TypeFor[Order]())
	assert.False(t, ok)
}

func TestResolveTypeID(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Known(reflect.TypeFor[Order](), reflect.TypeFor[Item]())

	order := reflect.TypeFor[Order]()

	assert.Equal(t, order, r.resolveTypeID("Order"))
	assert.Equal(t, order, r.resolveTypeID("mapping.Order"))
	assert.Equal(t, order, r.resolveTypeID("csvcaster/mapping.Order"))
	assert.Nil(t, r.resolveTypeID("store.Order"))
	assert.Nil(t, r.resolveTypeID("Missing"))
	assert.Nil(t, r.resolveTypeID(".Order"))
}

func TestMarshal_RoundTrip(t *testing.T) {
	t.Parallel()

	idx := 2
	f := &File{
		Version: "1",
		Mappings: []TypeMapping{{
			Type:    "store.Order",
			Columns: []ColumnSpec{{Member: "ID", Name: "id", Index: &idx}},
			Ignore:  StringOrArray{"Internal", "Secret"},
		}},
	}

	data, err := Marshal(f)
	require.NoError(t, err)

	got, err := ParseFile(data)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}
