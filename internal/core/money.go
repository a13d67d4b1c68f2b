// Package core holds the domain types shared by the API client and the
// view layer: transactions, money amounts, filters and chart aggregations.
//
// This file contains money parsing and formatting. Amounts are kept in
// integer cents internally; the backend wire format is a plain decimal
// number with two-decimal currency semantics.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Money struct {
	Cents int64
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Zero is allowed; negative values are not,
// since direction lives on the transaction type, not on the amount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	// A lone separator carries no digits at all.
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// Decimal renders the amount as a plain decimal string ("500" or "499.99").
func (m Money) Decimal() string {
	neg := m.Cents < 0
	cents := m.Cents
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	var s string
	if rem == 0 {
		s = strconv.FormatInt(whole, 10)
	} else {
		s = fmt.Sprintf("%d.%02d", whole, rem)
	}
	if neg {
		return "-" + s
	}
	return s
}

// Display renders the amount with a currency symbol and always two
// decimals, e.g. "₹1234.50". No thousands grouping is applied.
func (m Money) Display(symbol string) string {
	neg := m.Cents < 0
	cents := m.Cents
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%s%d.%02d", symbol, cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON writes the amount as a JSON number with currency semantics.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number (or numeric string) from the backend.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	if neg {
		cents = -cents
	}
	m.Cents = cents
	return nil
}
