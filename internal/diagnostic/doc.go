// Package diagnostic collects the findings of mapping resolution.
//
// Resolution never fails on these; they are reported so a caller can surface
// them (the writer logs warnings, the CLI prints them):
//   - duplicate column names in a flattened mapping
//   - members skipped because they cannot be read
//   - references skipped because they would recurse into themselves
package diagnostic
