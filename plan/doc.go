// Package plan compiles and caches the per-type write plans.
//
// A plan is built once per record type, or once per shape for dynamic
// records:
//  1. Key the record: pointer-stripped concrete type, plus the member names
//     for dynamic records (record.Discover).
//  2. Return the cached plan for the key, or compile one:
//     - structs: resolve the flattened columns (mapping.Registry.Resolve) and
//       look up one converter per column;
//     - primitives: one field through the converter of the type;
//     - dynamic records: one field per member name, converted at run time.
//  3. Run the plan against a record, writing fields to a Row.
//
// Entries never expire; Invalidate, InvalidateShape and InvalidateAll drop them.
package plan
