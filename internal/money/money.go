// Package money parses and formats Brazilian-real amounts as typed by shop staff.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyAmount is returned when the input holds no digits at all.
var ErrEmptyAmount = errors.New("empty amount")

// Parse parses an amount typed in Brazilian or plain decimal notation.
//
// Accepted examples: "1.234,56", "1234,56", "1234.56", "R$ 50", "-10,5".
func Parse(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	// Handle negative amounts
	isNegative := strings.HasPrefix(cleaned, "-")
	if isNegative {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "-"))
	}

	// Remove currency symbols and spaces
	cleaned = strings.ReplaceAll(cleaned, "R$", "")
	cleaned = strings.ReplaceAll(cleaned, "BRL", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")
	if cleaned == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	// Brazilian format: thousands separator = dot, decimal separator = comma
	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case strings.Contains(cleaned, ","):
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = parts[0] + "." + parts[1]
		} else {
			// "1,234,567" style grouping
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", text, cleaned)
	}

	if isNegative {
		amount = amount.Neg()
	}
	return amount, nil
}

// Round2 rounds to cents. Only used at display time.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format renders v as "R$ 1.234,56".
func Format(v float64) string {
	return "R$ " + FormatPlain(v)
}

// FormatPlain renders v as "1.234,56" without the currency symbol.
func FormatPlain(v float64) string {
	fixed := decimal.NewFromFloat(v).Round(2).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "," + frac
}
