// Package mapping resolves which columns a record type is written as.
//
// A mapping comes from one of three sources, in order of precedence:
//
//   - a Map registered in a Registry, built in Go with NewMap or loaded from
//     a YAML mapping file with Registry.LoadYAML;
//   - `csv` struct tags, read by AutoMap;
//   - plain reflection: exported fields in declaration order.
//
// # Struct tags
//
//	type Order struct {
//		ID       int       `csv:"order_id,index=0"`
//		Placed   time.Time `csv:"placed,format=2006-01-02"`
//		Customer *Customer `csv:",prefix=customer_"`
//		Internal string    `csv:"-"`
//	}
//
// Tag keys: the first element is the column name (empty keeps the field name),
// then index=N, format=F (quote values containing commas: format='Jan 2, 2006'),
// prefix=P for nested structs, and the ignore flag.
//
// # Nested structs
//
// A struct-typed field that is not written as a single value (see
// primitive.IsScalar) is a reference: its own columns are flattened inline,
// depth first, behind an optional name prefix. Columns read through a chain of
// field indexes; a nil pointer anywhere on the chain yields the zero value of
// the column type instead of failing.
//
// # YAML mapping files
//
//	version: "1"
//	mappings:
//	  - type: store.Order
//	    auto: true           # start from AutoMap, then apply the entries below
//	    columns:
//	      - member: ID
//	        name: order_id
//	        index: 0
//	      - member: Customer.Email
//	        name: email
//	      - name: total
//	        expr: TotalCents / 100.0
//	      - name: channel
//	        constant: web
//	    ignore: [Internal]
//	    references:
//	      - member: Customer
//	        prefix: customer_
//
// Type names match a registered Go type by full import path, by package name
// ("store.Order") or by bare type name.
//
// # Order and names
//
// Flattened columns are ordered by their declared index, falling back to
// their traversal position. Duplicate column names are allowed; Resolve
// reports them as warnings.
package mapping
