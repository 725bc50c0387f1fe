package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a single currency. Amounts are rounded to
// two decimal places with bankers rounding at construction time, never at
// display time. Arithmetic and comparison are only defined within one currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney builds a Money value, normalising the currency code and rounding
// the amount half-to-even to two decimal places.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if len(code) != 3 {
		return Money{}, fmt.Errorf("%w: currency code must be 3 letters, got %q", ErrInvalidCurrency, currency)
	}
	return Money{Amount: amount.RoundBank(2), Currency: code}, nil
}

// ParseMoney builds a Money value from a decimal string such as "100.005".
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a valid amount", ErrInvalidAmount, amount)
	}
	return NewMoney(d, currency)
}

// ZeroMoney returns a zero value in the given currency.
func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: strings.ToUpper(strings.TrimSpace(currency))}
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.Amount.Add(other.Amount), m.Currency)
}

func (m Money) Sub(other Money) (Money, error) {
	if err := m.checkCurrency(other); err != nil {
		return Money{}, err
	}
	return NewMoney(m.Amount.Sub(other.Amount), m.Currency)
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

// Cmp returns -1, 0 or 1 comparing m against other.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.checkCurrency(other); err != nil {
		return 0, err
	}
	return m.Amount.Cmp(other.Amount), nil
}

func (m Money) IsPositive() bool { return m.Amount.IsPositive() }
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }
func (m Money) IsZero() bool     { return m.Amount.IsZero() }

// SameCurrency reports whether both values share a currency code.
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.Currency
}

func (m Money) checkCurrency(other Money) error {
	if m.Currency != other.Currency {
		return fmt.Errorf("%w: expected %s, got %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return nil
}
