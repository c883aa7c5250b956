// Package escape decides how a single field is written: trimmed, sanitized,
// quoted or left as is.
package escape

import (
	"strings"
	"unicode/utf8"

	"csvcaster/options"
)

// Field returns the text to write for field and whether it was quoted.
// force quotes the field regardless of content, even under FlagQuoteNone.
func Field(cfg *options.Config, field string, force bool) (string, bool) {
	if cfg.Has(options.FlagTrim) {
		field = strings.TrimSpace(field)
	}

	if cfg.Injection.Enabled() {
		field = Sanitize(cfg, field)
	}

	if cfg.Has(options.FlagEscapeLeadingZero) && hasLeadingZero(field) {
		return `="` + field + `"`, true
	}

	quote := force || cfg.Has(options.FlagQuoteAll)
	if !quote && !cfg.Has(options.FlagQuoteNone) {
		quote = ShouldQuote(cfg, field)
	}

	if !quote {
		return field, false
	}

	return Quote(cfg.QuoteRune(), field), true
}

// ShouldQuote reports whether field needs quoting by content alone.
func ShouldQuote(cfg *options.Config, field string) bool {
	if field == "" {
		return false
	}

	if strings.ContainsRune(field, cfg.QuoteRune()) {
		return true
	}

	if field[0] == ' ' || field[len(field)-1] == ' ' {
		return true
	}

	if strings.ContainsAny(field, cfg.QuoteTriggers()) {
		return true
	}

	return cfg.IsMultiCharDelimiter() && strings.Contains(field, cfg.Delimiter)
}

// Quote doubles every quote character in field and wraps it in quotes.
func Quote(quote rune, field string) string {
	q := string(quote)

	var b strings.Builder
	b.Grow(len(field) + 2*len(q))
	b.WriteString(q)
	b.WriteString(strings.ReplaceAll(field, q, q+q))
	b.WriteString(q)

	return b.String()
}

// Unquote reverses Quote. Fields that are not wrapped in quote are returned unchanged.
func Unquote(quote rune, field string) string {
	q := string(quote)
	if utf8.RuneCountInString(field) < 2 || !strings.HasPrefix(field, q) || !strings.HasSuffix(field, q) {
		return field
	}

	inner := field[len(q) : len(field)-len(q)]

	return strings.ReplaceAll(inner, q+q, q)
}

// hasLeadingZero reports whether field is all ASCII digits starting with 0,
// a lone "0" included.
func hasLeadingZero(field string) bool {
	if field == "" || field[0] != '0' {
		return false
	}

	for i := 1; i < len(field); i++ {
		if field[i] < '0' || field[i] > '9' {
			return false
		}
	}

	return true
}
