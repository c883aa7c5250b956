// Package record models records whose members are only known at run time.
//
// A Bag is an ordered name/value list; string-keyed maps and any type
// implementing Dynamic are accepted too. Discover reads the ordered member
// names of such a record; that Shape is what plans for dynamic records are
// cached under, so two records with the same member names share one plan.
package record
