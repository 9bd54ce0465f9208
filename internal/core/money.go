// Package core holds the domain model and the pure budget engines:
// month filtering, recurring-item reconciliation and monthly aggregation.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// frPrinter groups digits the way the original UI renders amounts
// (fr-FR: "1 500 000").
var frPrinter = message.NewPrinter(language.French)

// ParseAmount converts a user-entered amount string to Ariary units.
//
// Grouping spaces and dots are tolerated ("1 500 000", "1.500.000");
// the result must be a positive whole number. Ariary has no usable
// minor unit, so fractional input is rejected.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == ' ' || r == '.' || r == ',':
			// grouping noise
		default:
			return Money{}, ErrInvalidAmount
		}
	}
	units, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if units <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Units: units}, nil
}

// Format renders the amount with French digit grouping and the
// currency marker, e.g. "1 500 000 Ar".
func (m Money) Format() string {
	return frPrinter.Sprintf("%d Ar", m.Units)
}

// FormatSigned renders a signed unit count, used by the activity series
// where income is positive and expense negative.
func FormatSigned(units int64) string {
	return frPrinter.Sprintf("%d Ar", units)
}
