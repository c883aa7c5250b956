package escape

import (
	"strings"

	"csvcaster/options"
)

// Sanitize neutralizes fields that a spreadsheet would evaluate as a formula,
// according to cfg.Injection. Fields not starting with an injection character
// are returned unchanged.
func Sanitize(cfg *options.Config, field string) string {
	if field == "" || !strings.ContainsRune(cfg.InjectionChars, []rune(field)[0]) {
		return field
	}

	switch cfg.Injection {
	case options.InjectionEscape:
		return cfg.InjectionEscape + field
	case options.InjectionStrip:
		return strings.TrimLeft(field, cfg.InjectionChars)
	default:
		return field
	}
}
