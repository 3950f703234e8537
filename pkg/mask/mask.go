// Package mask mirrors the incremental input formatters used by the OSA
// Request Form so expected values in a scenario can be checked against the
// same rules the page applies while the user types.
package mask

import (
	"strings"
	"unicode"
)

// Kind identifies which formatter a field uses.
type Kind string

const (
	// KindNone means the field is not masked
	KindNone Kind = ""

	// KindPhone formats North American numbers as (AAA) BBB-CCCC
	KindPhone Kind = "phone"

	// KindPostalCode formats Canadian postal codes as ANA NAN
	KindPostalCode Kind = "postal"
)

// Apply runs the formatter for kind over value.
func Apply(kind Kind, value string) string {
	switch kind {
	case KindPhone:
		return Phone(value)
	case KindPostalCode:
		return PostalCode(value)
	default:
		return value
	}
}

// Phone keeps the first ten digits of value and formats them progressively:
// "(403", "(403) 555", "(403) 555-1234".
func Phone(value string) string {
	var digits []rune
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch n := len(digits); {
	case n == 0:
		return ""
	case n <= 3:
		return "(" + string(digits)
	case n <= 6:
		return "(" + string(digits[:3]) + ") " + string(digits[3:])
	default:
		return "(" + string(digits[:3]) + ") " + string(digits[3:6]) + "-" + string(digits[6:])
	}
}

// PostalCode strips everything but ASCII letters and digits, uppercases the
// rest and inserts a space after the third character. Input past six
// characters is dropped.
func PostalCode(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	cleaned := b.String()
	if len(cleaned) <= 3 {
		return cleaned
	}
	if len(cleaned) > 6 {
		cleaned = cleaned[:6]
	}
	return cleaned[:3] + " " + cleaned[3:]
}

// Progressive returns the value the field shows after each keystroke of
// input. The last element equals Apply(kind, input).
func Progressive(kind Kind, input string) []string {
	states := make([]string, 0, len(input))
	current := ""
	for _, r := range input {
		current = Apply(kind, current+string(r))
		states = append(states, current)
	}
	return states
}
