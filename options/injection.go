package options

// InjectionMode selects how fields that look like spreadsheet formulas are sanitized.
type InjectionMode string

const (
	InjectionNone   InjectionMode = "none"   // write fields unchanged
	InjectionEscape InjectionMode = "escape" // prefix with the injection escape character
	InjectionStrip  InjectionMode = "strip"  // drop the leading injection characters
)

// IsValid reports whether m is a known mode. The empty mode means none.
func (m InjectionMode) IsValid() bool {
	switch m {
	case "", InjectionNone, InjectionEscape, InjectionStrip:
		return true
	default:
		return false
	}
}

// Enabled reports whether fields are sanitized at all.
func (m InjectionMode) Enabled() bool {
	return m == InjectionEscape || m == InjectionStrip
}
