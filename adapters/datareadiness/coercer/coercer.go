package coercer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// TypeCoercer handles deterministic parsing of raw cell text
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	TimestampFormats   []string `json:"timestamp_formats"`   // Layouts tried in order
	ThousandsSeparator string   `json:"thousands_separator"` // Stripped before numeric parsing
	NullTokens         []string `json:"null_tokens"`         // Raw text treated as missing on ingestion
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		TimestampFormats: []string{
			time.RFC3339Nano,
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02 15:04",
			"2006-01-02",
			"2006/01/02",
			"2006/01/02 15:04:05",
			"01/02/2006",
			"01/02/2006 15:04:05",
			"1/2/2006",
			"02-Jan-2006",
			"02 Jan 2006",
			"Jan 2, 2006",
			"Jan 2 2006",
			"January 2, 2006",
			"2 January 2006",
			time.RFC1123,
			time.RFC1123Z,
			time.ANSIC,
		},
		ThousandsSeparator: ",",
		NullTokens: []string{
			"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "NULL", "null",
			"None", "<NA>", "#N/A", "#NA", "-1.#IND", "1.#QNAN",
		},
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{config: config}
}

// IsNullToken reports whether raw text denotes a missing cell
func (c *TypeCoercer) IsNullToken(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	for _, token := range c.config.NullTokens {
		if trimmed == token {
			return true
		}
	}
	return false
}

// ParseTimestamp attempts to parse a date/time literal with the configured layouts
func (c *TypeCoercer) ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range c.config.TimestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseFormattedNumeric strips thousands separators and parses a float.
// Currency symbols, percent signs and other decoration are rejected.
func (c *TypeCoercer) ParseFormattedNumeric(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if c.config.ThousandsSeparator != "" {
		s = strings.ReplaceAll(s, c.config.ThousandsSeparator, "")
	}
	if s == "" {
		return 0, fmt.Errorf("empty numeric literal")
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return val, nil
}

// ParseStrictNumeric parses plain numeric text, without separator stripping
func (c *TypeCoercer) ParseStrictNumeric(raw string) (float64, bool) {
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// ParseBoolean accepts the literal spellings of true and false
func (c *TypeCoercer) ParseBoolean(raw string) (bool, bool) {
	switch strings.TrimSpace(raw) {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	}
	return false, false
}

// ContainsLetter reports whether the text contains an alphabetic character
func (c *TypeCoercer) ContainsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// NormalizeText lower-cases and removes every whitespace character
func (c *TypeCoercer) NormalizeText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
