// Package common holds small helpers shared by the internal packages.
package common

import "path"

// UnknownStr is what String methods print for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the last element of an import path, which is the name a
// YAML mapping uses to refer to the package ("store" for "example.com/app/store").
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// Duplicates returns every name that occurs more than once, in order of
// its second occurrence.
func Duplicates(names []string) []string {
	seen := make(map[string]int, len(names))

	var dups []string

	for _, name := range names {
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}

	return dups
}
