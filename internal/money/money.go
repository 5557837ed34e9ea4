// Package money implements fixed-point decimal arithmetic for account
// balances and transfer amounts. Every value carries exactly four fractional
// digits once it has passed through Normalize or Round, and all persisted or
// compared amounts are expected to have done so.
package money

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by every amount.
const Scale = 4

// Money is an immutable fixed-point decimal amount.
type Money struct {
	dec decimal.Decimal
}

// Zero is the canonical zero amount.
func Zero() Money {
	return Money{dec: decimal.Zero}
}

// Normalize parses a raw decimal string into an amount at the fixed scale.
// The fractional part is truncated, never rounded: "10.00005" becomes
// "10.0000". Empty or unparseable input yields zero; shape validation is the
// caller's concern.
func Normalize(raw string) Money {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Zero()
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return Zero()
	}
	return Money{dec: d.Truncate(Scale)}
}

// FromDecimal wraps an exact decimal value without normalizing it. Callers
// are expected to Round before persisting or comparing the result.
func FromDecimal(d decimal.Decimal) Money {
	return Money{dec: d}
}

// Round applies half-up rounding at the fixed scale: a guard digit >= 5
// increments the kept fraction by one unit, carrying through the integer
// part. The sign applies to the magnitude, and a rounded negative zero
// collapses to plain zero.
func (m Money) Round() Money {
	return Money{dec: m.dec.Round(Scale)}
}

// Add returns the exact sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

// Sub returns the exact difference of two amounts.
func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

// Mul returns the exact product of two amounts. The result usually carries
// excess precision and must be rounded by the caller.
func (m Money) Mul(o Money) Money {
	return Money{dec: m.dec.Mul(o.dec)}
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	return m.dec.Cmp(o.dec)
}

// LessThan reports whether m < o.
func (m Money) LessThan(o Money) bool {
	return m.dec.Cmp(o.dec) < 0
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.dec.IsPositive()
}

// IsZero reports whether m == 0.
func (m Money) IsZero() bool {
	return m.dec.IsZero()
}

// Equal reports whether two amounts are numerically equal.
func (m Money) Equal(o Money) bool {
	return m.dec.Equal(o.dec)
}

// String renders the amount with exactly four fractional digits.
func (m Money) String() string {
	return m.dec.StringFixed(Scale)
}

// Value implements driver.Valuer so amounts persist as decimal strings.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner for numeric columns.
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.dec = decimal.Zero
		return nil
	}
	switch v := value.(type) {
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("money: cannot scan %q: %w", string(v), err)
		}
		m.dec = d
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("money: cannot scan %q: %w", v, err)
		}
		m.dec = d
	case float64:
		m.dec = decimal.NewFromFloat(v)
	case int64:
		m.dec = decimal.NewFromInt(v)
	default:
		return fmt.Errorf("money: cannot scan type %T", value)
	}
	return nil
}

// MarshalJSON renders the amount as a quoted decimal string, matching the
// wire format of the transfer API and the broadcast payload.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		m.dec = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: cannot unmarshal %q: %w", s, err)
	}
	m.dec = d
	return nil
}
