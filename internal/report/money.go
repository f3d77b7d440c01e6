package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatIDR renders an amount the way the client displays rupiah:
// "Rp 1.234.567" with dots as thousand separators and a comma before any
// fractional part ("Rp 1.234,50"). Negative amounts keep the sign in
// front of the currency marker: "-Rp 500".
func FormatIDR(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	s := amount.String()
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString("Rp ")

	// Group the integer digits in threes from the right.
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}
