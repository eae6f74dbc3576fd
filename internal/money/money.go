// Package money renders decimal amounts as display strings for invoices.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Config enumerates every knob of the formatter. The zero value is not
// useful; start from DefaultConfig or InvoiceConfig.
type Config struct {
	// Places is the number of fractional digits, always emitted in full.
	Places int32
	// Currency is prepended between the sign and the digits.
	Currency string
	// Sep groups integer digits in clusters of three. May be blank.
	Sep string
	// DecimalPoint separates integer and fractional digits. Specify blank
	// only together with Places == 0.
	DecimalPoint string
	// Pos and Neg are the leading sign markers; TrailNeg is appended after
	// the digits of a negative value (for "1.234-" or "(1.234)" styles).
	Pos      string
	Neg      string
	TrailNeg string
}

// DefaultConfig formats like "1,234,567.89".
func DefaultConfig() Config {
	return Config{Places: 2, Sep: ",", DecimalPoint: ".", Neg: "-"}
}

// InvoiceConfig formats like "1.234.567,89", the convention used on the
// generated invoices.
func InvoiceConfig() Config {
	return Config{Places: 2, Sep: ".", DecimalPoint: ",", Neg: "-"}
}

// Format converts v into a display string according to cfg. Rounding to
// cfg.Places is exact decimal rounding, half away from zero. The function is
// pure: the same value and config always produce the same string.
func Format(v decimal.Decimal, cfg Config) string {
	q := v.Round(cfg.Places)
	negative := q.Sign() < 0

	digits := q.Abs().StringFixed(cfg.Places)
	intPart := digits
	fracPart := ""
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		intPart, fracPart = digits[:i], digits[i+1:]
	}

	var b strings.Builder
	if negative {
		b.WriteString(cfg.Neg)
	} else {
		b.WriteString(cfg.Pos)
	}
	b.WriteString(cfg.Currency)
	writeGrouped(&b, intPart, cfg.Sep)
	b.WriteString(cfg.DecimalPoint)
	b.WriteString(fracPart)
	if negative {
		b.WriteString(cfg.TrailNeg)
	}
	return b.String()
}

// writeGrouped emits the integer digits with sep between clusters of three,
// counted from the right, never before the leading digit.
func writeGrouped(b *strings.Builder, digits, sep string) {
	n := len(digits)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 && sep != "" {
			b.WriteString(sep)
		}
		b.WriteByte(digits[i])
	}
}
