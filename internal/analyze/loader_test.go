package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadStore(t *testing.T) (*Analyzer, *TypeGraph) {
	t.Helper()

	analyzer := NewAnalyzer()
	graph, err := analyzer.LoadPackages("csvcaster/store")
	require.NoError(t, err)
	require.NotNil(t, graph)

	return analyzer, graph
}

func field(t *testing.T, info *TypeInfo, name string) *FieldInfo {
	t.Helper()

	for i := range info.Fields {
		if info.Fields[i].Name == name {
			return &info.Fields[i]
		}
	}

	require.Failf(t, "field not found", "%s has no field %s", info.ID, name)

	return nil
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	_, graph := loadStore(t)

	assert.Contains(t, graph.Packages, "csvcaster/store")

	for _, name := range []string{"Order", "Customer", "Address", "Product", "OrderItem", "OrderStatus", "Audit"} {
		assert.Contains(t, graph.Types, TypeID{PkgPath: "csvcaster/store", Name: name})
	}
}

func TestAnalyzer_FieldKinds(t *testing.T) {
	_, graph := loadStore(t)

	order := graph.GetType(TypeID{PkgPath: "csvcaster/store", Name: "Order"})
	require.NotNil(t, order)
	assert.Equal(t, TypeKindStruct, order.Kind)

	audit := field(t, order, "Audit")
	assert.True(t, audit.Embedded)
	assert.Equal(t, TypeKindStruct, audit.Type.Kind)

	assert.Equal(t, TypeKindExternal, field(t, order, "OrderedAt").Type.Kind)
	assert.Equal(t, TypeKindAlias, field(t, order, "Status").Type.Kind)

	items := field(t, order, "Items")
	assert.Equal(t, TypeKindSlice, items.Type.Kind)
	assert.Equal(t, TypeKindStruct, items.Type.ElemType.Kind)
	assert.False(t, items.Type.IsBytes())

	customer := graph.GetType(TypeID{PkgPath: "csvcaster/store", Name: "Customer"})
	address := field(t, customer, "Address")
	assert.Equal(t, TypeKindPointer, address.Type.Kind)
	assert.Equal(t, TypeKindStruct, address.Type.Deref().Kind)
	assert.Equal(t, "Address", address.Type.Deref().ID.Name)
}

func TestAnalyzer_CSVTags(t *testing.T) {
	_, graph := loadStore(t)

	product := graph.GetType(TypeID{PkgPath: "csvcaster/store", Name: "Product"})
	require.NotNil(t, product)

	sku := field(t, product, "SKU")
	assert.Equal(t, "sku", sku.CSVName())
	assert.Equal(t, 0, sku.CSVTag().Index)

	assert.True(t, field(t, product, "Description").CSVTag().Ignore)
	assert.Equal(t, "2006-01-02", field(t, product, "CreatedAt").CSVTag().Format)

	customer := graph.GetType(TypeID{PkgPath: "csvcaster/store", Name: "Customer"})
	assert.Equal(t, "address_", field(t, customer, "Address").CSVTag().Prefix)
	assert.Equal(t, "Address", field(t, customer, "Address").CSVName())
}

func TestAnalyzer_GetStruct(t *testing.T) {
	analyzer, _ := loadStore(t)

	for _, id := range []string{"Order", "store.Order", "csvcaster/store.Order"} {
		info, err := analyzer.GetStruct(id)
		require.NoError(t, err, id)
		assert.Equal(t, "Order", info.ID.Name)
	}

	_, err := analyzer.GetStruct("OrderStatus")
	require.ErrorContains(t, err, "not a struct")

	_, err = analyzer.GetStruct("warehouse.Order")
	require.ErrorContains(t, err, "not found")
}

func TestTypeID_String(t *testing.T) {
	id := TypeID{PkgPath: "csvcaster/store", Name: "Order"}
	assert.Equal(t, "csvcaster/store.Order", id.String())
	assert.Equal(t, "store.Order", id.Short())

	idNoPkg := TypeID{Name: "int"}
	assert.Equal(t, "int", idNoPkg.String())
	assert.Equal(t, "int", idNoPkg.Short())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "basic", TypeKindBasic.String())
	assert.Equal(t, "struct", TypeKindStruct.String())
	assert.Equal(t, "pointer", TypeKindPointer.String())
	assert.Equal(t, "slice", TypeKindSlice.String())
	assert.Equal(t, "alias", TypeKindAlias.String())
	assert.Equal(t, "external", TypeKindExternal.String())
	assert.Equal(t, "unknown", TypeKindUnknown.String())
}

func TestFieldInfo_CSVName(t *testing.T) {
	f1 := FieldInfo{Name: "MyField", Tag: `csv:"my_field"`}
	assert.Equal(t, "my_field", f1.CSVName())

	f2 := FieldInfo{Name: "MyField", Tag: `csv:"my_field,index=2"`}
	assert.Equal(t, "my_field", f2.CSVName())
	assert.Equal(t, 2, f2.CSVTag().Index)

	f3 := FieldInfo{Name: "MyField", Tag: ""}
	assert.Equal(t, "MyField", f3.CSVName())

	f4 := FieldInfo{Name: "MyField", Tag: `csv:"-"`}
	assert.Equal(t, "MyField", f4.CSVName())
	assert.True(t, f4.CSVTag().Ignore)

	f5 := FieldInfo{Name: "MyField", Tag: `csv:"x,bogus"`}
	assert.Equal(t, "MyField", f5.CSVName())
}
