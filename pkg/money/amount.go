package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an exact-decimal quantity tagged with the currency or asset it is
// denominated in. All money math in coinbuy goes through Amount so that a USD
// value can never be silently compared with a BTC value, and nothing is ever
// coerced through a binary float.
type Amount struct {
	value    decimal.Decimal
	currency string
}

// New builds an Amount from an already-parsed decimal.
func New(value decimal.Decimal, currency string) Amount {
	return Amount{value: value, currency: currency}
}

// Parse builds an Amount from a decimal string, e.g. Parse("50", "USD").
func Parse(s, currency string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid %s amount %q: %w", currency, s, err)
	}
	return Amount{value: d, currency: currency}, nil
}

// Zero returns the zero Amount for a currency.
func Zero(currency string) Amount {
	return Amount{value: decimal.Zero, currency: currency}
}

// Currency returns the currency/asset tag.
func (a Amount) Currency() string { return a.currency }

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.value }

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool { return a.value.IsPositive() }

// MismatchError reports an attempt to combine amounts of different currencies.
type MismatchError struct {
	Left, Right string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// Cmp compares a against b: -1 if a < b, 0 if equal, 1 if a > b.
// The comparison is exact; both operands must share a currency.
func (a Amount) Cmp(b Amount) (int, error) {
	if a.currency != b.currency {
		return 0, &MismatchError{Left: a.currency, Right: b.currency}
	}
	return a.value.Cmp(b.value), nil
}

// LessThan reports whether a < b, exactly.
func (a Amount) LessThan(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

// Add returns a + b.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.currency != b.currency {
		return Amount{}, &MismatchError{Left: a.currency, Right: b.currency}
	}
	return Amount{value: a.value.Add(b.value), currency: a.currency}, nil
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.currency != b.currency {
		return Amount{}, &MismatchError{Left: a.currency, Right: b.currency}
	}
	return Amount{value: a.value.Sub(b.value), currency: a.currency}, nil
}

// Wire renders the exact decimal string for the venue wire boundary.
// Never a float, never rounded.
func (a Amount) Wire() string { return a.value.String() }

// Fixed renders the value with a fixed number of fraction digits,
// e.g. Fixed(8) for asset sizes and Fixed(3) for fiat.
func (a Amount) Fixed(places int32) string { return a.value.StringFixed(places) }

// String renders "value CUR" for logs and error messages.
func (a Amount) String() string {
	return a.value.String() + " " + a.currency
}
