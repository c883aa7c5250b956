// Package analyze loads Go packages and drafts csv mapping files from their
// struct types.
//
// It uses golang.org/x/tools/go/packages with go/types to build an in-memory
// model of structs and their fields, then Scaffold turns a struct into a
// mapping.TypeMapping honoring its csv tags.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/external)
//   - FieldInfo: describes field name, type, tags, and embedding
package analyze
