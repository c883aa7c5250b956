package mapping

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvcaster/internal/diagnostic"
)

type Address struct {
	Street string
	City   string `csv:"city"`
}

type Customer struct {
	Name    string
	Email   string
	Address *Address `csv:",prefix=addr_"`
}

type Order struct {
	ID       int       `csv:"order_id,index=0"`
	Placed   time.Time `csv:"placed,format=2006-01-02"`
	Customer Customer  `csv:",prefix=customer_"`
	Total    float64
	note     string
	Internal string `csv:"-"`
}

type Node struct {
	Name string
	Next *Node
}

type Base struct {
	ID int
}

type Item struct {
	Base
	Name string
}

type base struct {
	Code string
}

type Thing struct {
	base
	Label string
}

func resolveNames(t *testing.T, r *Registry, typ reflect.Type, includePrivate bool) []string {
	t.Helper()

	res, err := r.Resolve(typ, includePrivate)
	require.NoError(t, err)

	return res.Names()
}

func TestResolve_AutoMap(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	assert.Equal(t, []string{
		"order_id", "placed", "customer_Name", "customer_Email",
		"customer_addr_Street", "customer_addr_city", "Total",
	}, resolveNames(t, r, reflect.TypeFor[Order](), false))

	assert.Equal(t, []string{
		"order_id", "placed", "customer_Name", "customer_Email",
		"customer_addr_Street", "customer_addr_city", "Total", "note",
	}, resolveNames(t, r, reflect.TypeFor[*Order](), true))
}

func TestResolve_ColumnMetadata(t *testing.T) {
	t.Parallel()

	res, err := NewRegistry().Resolve(reflect.TypeFor[Order](), false)
	require.NoError(t, err)

	placed := res.Columns[1]
	assert.Equal(t, "Placed", placed.Member)
	assert.Equal(t, "2006-01-02", placed.Format)
	assert.Equal(t, []int{1}, placed.Path)
	assert.Equal(t, reflect.TypeFor[time.Time](), placed.Type)

	city := res.Columns[5]
	assert.Equal(t, []int{2, 2, 1}, city.Path)
	assert.Equal(t, reflect.TypeFor[string](), city.Type)
}

func TestColumn_Value_NilChain(t *testing.T) {
	t.Parallel()

	res, err := NewRegistry().Resolve(reflect.TypeFor[Order](), false)
	require.NoError(t, err)

	city := res.Columns[5]

	rec := reflect.ValueOf(Order{})
	assert.Empty(t, city.Value(rec).String())

	rec = reflect.ValueOf(Order{Customer: Customer{Address: &Address{City: "Oslo"}}})
	assert.Equal(t, "Oslo", city.Value(rec).String())

	var nilOrder *Order
	assert.Equal(t, 0, int(res.Columns[0].Value(reflect.ValueOf(nilOrder)).Int()))
}

func TestResolve_Ordering(t *testing.T) {
	t.Parallel()

	type ranked struct {
		A string
		B string `csv:",index=0"`
		C string
		D string `csv:",index=5"`
		E string
	}

	assert.Equal(t, []string{"B", "A", "C", "E", "D"},
		resolveNames(t, NewRegistry(), reflect.TypeFor[ranked](), false))
}

func TestResolve_Cycle(t *testing.T) {
	t.Parallel()

	res, err := NewRegistry().Resolve(reflect.TypeFor[Node](), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name"}, res.Names())
	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeCycle, res.Diagnostics.Warnings[0].Code)
	assert.Equal(t, "Next", res.Diagnostics.Warnings[0].Column)
}

func TestResolve_Embedded(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Equal(t, []string{"ID", "Name"}, resolveNames(t, r, reflect.TypeFor[Item](), false))
	assert.Equal(t, []string{"Code", "Label"}, resolveNames(t, r, reflect.TypeFor[Thing](), false))

	res, err := r.Resolve(reflect.TypeFor[Thing](), false)
	require.NoError(t, err)
	assert.Equal(t, "x", res.Columns[0].Value(reflect.ValueOf(Thing{base: base{Code: "x"}})).String())
}

func TestResolve_Duplicates(t *testing.T) {
	t.Parallel()

	type dup struct {
		A string `csv:"x"`
		B string `csv:"x"`
	}

	res, err := NewRegistry().Resolve(reflect.TypeFor[dup](), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "x"}, res.Names())
	require.Len(t, res.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeDuplicateName, res.Diagnostics.Warnings[0].Code)
	assert.False(t, res.Diagnostics.HasErrors())
}

func TestResolve_NonStruct(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	for _, typ := range []reflect.Type{reflect.TypeFor[int](), reflect.TypeFor[*string](), reflect.TypeFor[time.Duration]()} {
		res, err := r.Resolve(typ, false)
		require.NoError(t, err)
		assert.Empty(t, res.Columns, typ.String())
	}
}

func TestResolve_NoColumns(t *testing.T) {
	t.Parallel()

	type hidden struct {
		a int
		b string
	}

	res, err := NewRegistry().Resolve(reflect.TypeFor[hidden](), false)
	require.NoError(t, err)

	assert.Empty(t, res.Columns)
	assert.Empty(t, res.Diagnostics.Warnings)
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Equal(t, diagnostic.CodeNoColumns, res.Diagnostics.Errors[0].Code)
	assert.ErrorContains(t, res.Diagnostics.Err(), "[no-columns] type has no writable columns")
}

func TestAutoMap_TagError(t *testing.T) {
	t.Parallel()

	type bad struct {
		A string `csv:"a,index=-1"`
	}

	_, err := AutoMap(reflect.TypeFor[bad]())
	require.Error(t, err)

	var tagErr *TagError
	require.ErrorAs(t, err, &tagErr)
	assert.Equal(t, "A", tagErr.Field)

	_, err = NewRegistry().Resolve(reflect.TypeFor[bad](), false)
	require.Error(t, err)
}

func TestMap_Builder(t *testing.T) {
	t.Parallel()

	m := NewMapFor[Order]()
	m.Column("Customer.Email").Name("email").Index(0)
	m.Column("ID").Name("id")
	m.Computed("double", "Total * 2")
	m.Constant("src", "web")

	r := NewRegistry()
	require.NoError(t, r.Register(m))

	res, err := r.Resolve(reflect.TypeFor[Order](), false)
	require.NoError(t, err)
	require.Equal(t, []string{"email", "id", "double", "src"}, res.Names())

	rec := reflect.ValueOf(Order{ID: 7, Total: 2.5, Customer: Customer{Email: "a@b.c"}})
	assert.Equal(t, "a@b.c", res.Columns[0].Value(rec).String())
	assert.Equal(t, []int{2, 1}, res.Columns[0].Path)

	out, err := res.Columns[2].Eval(res.Columns[2].Value(rec))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, out, 1e-9)

	require.NotNil(t, res.Columns[3].Constant)
	assert.Equal(t, "web", *res.Columns[3].Constant)

	// same member returns the same column
	m.Column("ID").Format("%05d")
	assert.Len(t, m.Columns(), 4)
	assert.Equal(t, "%05d", m.Columns()[1].Format)
}

func TestMap_Reference(t *testing.T) {
	t.Parallel()

	cust := NewMapFor[Customer]()
	cust.Column("Email").Name("mail")
	cust.Computed("greeting", `"hi " + Name`)

	m := NewMapFor[Order]()
	m.Column("ID")
	m.Reference("Customer", cust, "c_")

	r := NewRegistry()
	require.NoError(t, r.Register(m))

	res, err := r.Resolve(reflect.TypeFor[Order](), false)
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "c_mail", "c_greeting"}, res.Names())

	greeting := res.Columns[2]
	out, err := greeting.Eval(greeting.Value(reflect.ValueOf(Order{Customer: Customer{Name: "Ann"}})))
	require.NoError(t, err)
	assert.Equal(t, "hi Ann", out)

	m.Ignore("Customer")
	assert.Empty(t, m.References())
}

func TestMap_Errors(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, NewMap(reflect.TypeFor[int]()).Err(), ErrNotStruct)

	m := NewMapFor[Order]()
	m.Column("Missing")
	require.Error(t, m.Err())
	require.Error(t, NewRegistry().Register(m))

	m = NewMapFor[Order]()
	m.Reference("Total", nil, "")
	assert.ErrorIs(t, m.Err(), ErrNotStruct)

	m = NewMapFor[Order]()
	m.Reference("Customer", NewMapFor[Address](), "")
	require.Error(t, m.Err())

	m = NewMapFor[Order]()
	m.Computed("bad", "Total +")
	require.Error(t, m.Err())

	m = NewMapFor[Order]()
	m.Column("ID").Index(-3)
	require.Error(t, m.Err())
}

func TestRegistry_Unregister(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	m := NewMapFor[Item]()
	m.Column("Name")
	require.NoError(t, r.Register(m))

	got, ok := r.Lookup(reflect.TypeFor[*Item]())
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Equal(t, []string{"Name"}, resolveNames(t, r, reflect.TypeFor[Item](), false))

	r.Unregister(reflect.TypeFor[Item]())
	assert.Equal(t, []string{"ID", "Name"}, resolveNames(t, r, reflect.TypeFor[Item](), false))
}

func TestParseTag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag     string
		want    Tag
		wantErr bool
	}{
		{tag: "", want: Tag{Index: NoIndex}},
		{tag: "-", want: Tag{Index: NoIndex, Ignore: true}},
		{tag: "name", want: Tag{Name: "name", Index: NoIndex}},
		{tag: "name,index=3", want: Tag{Name: "name", Index: 3}},
		{tag: ",ignore", want: Tag{Index: NoIndex, Ignore: true}},
		{tag: "d,format='Jan 2, 2006'", want: Tag{Name: "d", Index: NoIndex, Format: "Jan 2, 2006"}},
		{tag: "'a,b'", want: Tag{Name: "a,b", Index: NoIndex}},
		{tag: ",prefix=c_", want: Tag{Index: NoIndex, Prefix: "c_"}},
		{tag: "a,index=x", wantErr: true},
		{tag: "a,index=-1", wantErr: true},
		{tag: "a,color=red", wantErr: true},
		{tag: "a,ignore=yes", wantErr: true},
		{tag: "a,format='x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			t.Parallel()

			got, err := ParseTag(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePath(t *testing.T) {
	t.Parallel()

	p, err := ParsePath("Customer.Address.City")
	require.NoError(t, err)
	assert.Equal(t, []string{"Customer", "Address", "City"}, p.Segments)
	assert.Equal(t, "Customer.Address.City", p.String())

	for _, bad := range []string{"", "a..b", "Items[]", "1abc", "a-b"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}
}
