// Package options holds the writer configuration.
package options

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

var (
	ErrEmptyDelimiter   = errors.New("delimiter must not be empty")
	ErrInvalidQuote     = errors.New("quote must be exactly one character")
	ErrQuoteInDelimiter = errors.New("delimiter must not contain the quote character")
	ErrConflictingQuote = errors.New("quote-all and quote-none are mutually exclusive")
	ErrInvalidInjection = errors.New("unknown injection mode")
)

// Config controls how records are turned into rows.
type Config struct {
	Delimiter string `yaml:"delimiter"`
	Quote     string `yaml:"quote"`
	NewLine   string `yaml:"newline"`
	Comment   string `yaml:"comment"`
	// Culture is a BCP 47 tag used by converters, e.g. "de-DE". Empty means invariant.
	Culture string `yaml:"culture"`
	// ForceQuoteChars are extra characters whose presence forces a field to be quoted.
	ForceQuoteChars string        `yaml:"force_quote_chars"`
	Injection       InjectionMode `yaml:"injection"`
	InjectionChars  string        `yaml:"injection_chars"`
	InjectionEscape string        `yaml:"injection_escape"`
	Flags           Flag          `yaml:"flags"`

	quote    rune
	triggers string
	culture  language.Tag

	// derivedFrom holds the fields the derived values above were computed from.
	derivedFrom derivedKey
	valid       bool
}

type derivedKey struct {
	delimiter, quote, forceQuote, culture string
}

func (c *Config) derivedKey() derivedKey {
	return derivedKey{c.Delimiter, c.Quote, c.ForceQuoteChars, c.Culture}
}

// Default returns the RFC 4180 style configuration with a header row.
func Default() *Config {
	return &Config{
		Delimiter:       ",",
		Quote:           `"`,
		NewLine:         "\r\n",
		Comment:         "#",
		Injection:       InjectionNone,
		InjectionChars:  "=@+-\t\r",
		InjectionEscape: "'",
		Flags:           FlagDefault,
	}
}

// Validate checks the configuration and computes the derived values the
// escaping policy and converters read. The accessors below validate again
// when the delimiter, quote, force-quote characters or culture changed since.
func (c *Config) Validate() error {
	if c.Delimiter == "" {
		return ErrEmptyDelimiter
	}

	if utf8.RuneCountInString(c.Quote) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidQuote, c.Quote)
	}

	if strings.Contains(c.Delimiter, c.Quote) {
		return fmt.Errorf("%w: %q", ErrQuoteInDelimiter, c.Delimiter)
	}

	if c.Flags.Has(FlagQuoteAll | FlagQuoteNone) {
		return ErrConflictingQuote
	}

	if !c.Injection.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidInjection, c.Injection)
	}

	culture := language.Und
	if c.Culture != "" {
		tag, err := language.Parse(c.Culture)
		if err != nil {
			return fmt.Errorf("invalid culture %q: %w", c.Culture, err)
		}

		culture = tag
	}

	c.quote, _ = utf8.DecodeRuneInString(c.Quote)
	c.culture = culture

	triggers := "\r\n" + c.ForceQuoteChars
	if utf8.RuneCountInString(c.Delimiter) == 1 {
		triggers += c.Delimiter
	}

	c.triggers = triggers
	c.derivedFrom = c.derivedKey()
	c.valid = true

	return nil
}

// Has reports whether the flag is set.
func (c *Config) Has(f Flag) bool {
	return c.Flags.Has(f)
}

// Enable sets the flags and returns c for chaining.
func (c *Config) Enable(f Flag) *Config {
	c.Flags |= f
	return c
}

// Disable clears the flags and returns c for chaining.
func (c *Config) Disable(f Flag) *Config {
	c.Flags &^= f
	return c
}

// QuoteRune returns the quote character. Only meaningful after Validate.
func (c *Config) QuoteRune() rune {
	c.mustBeValid()
	return c.quote
}

// QuoteTriggers returns the characters whose presence forces quoting:
// CR, LF, a single-character delimiter and ForceQuoteChars.
func (c *Config) QuoteTriggers() string {
	c.mustBeValid()
	return c.triggers
}

// CultureTag returns the parsed culture; language.Und when none was configured.
func (c *Config) CultureTag() language.Tag {
	c.mustBeValid()
	return c.culture
}

// IsMultiCharDelimiter reports whether the delimiter is longer than one character.
func (c *Config) IsMultiCharDelimiter() bool {
	return utf8.RuneCountInString(c.Delimiter) > 1
}

func (c *Config) mustBeValid() {
	if !c.valid || c.derivedFrom != c.derivedKey() {
		if err := c.Validate(); err != nil {
			panic("options: invalid config: " + err.Error())
		}
	}
}
