package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyRoundsHalfToEven(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"100.005", "100.00"},
		{"100.015", "100.02"},
		{"100.025", "100.02"},
		{"2.675", "2.68"},
		{"0.125", "0.12"},
		{"-100.005", "-100.00"},
		{"50", "50.00"},
	}

	for _, tc := range cases {
		m, err := ParseMoney(tc.in, "USD")
		require.NoError(t, err, "parse %s", tc.in)
		assert.Equal(t, tc.want, m.Amount.StringFixed(2), "rounding %s", tc.in)
	}
}

func TestNewMoneyNormalisesCurrency(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(10), " usd ")
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
}

func TestNewMoneyRejectsBadCurrency(t *testing.T) {
	for _, code := range []string{"", "US", "DOLLARS"} {
		_, err := NewMoney(decimal.NewFromInt(1), code)
		assert.ErrorIs(t, err, ErrInvalidCurrency, "currency %q", code)
	}
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	_, err := ParseMoney("ten dollars", "USD")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMoneyArithmetic(t *testing.T) {
	a, _ := ParseMoney("10.50", "USD")
	b, _ := ParseMoney("4.25", "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14.75 USD", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "6.25 USD", diff.String())

	assert.Equal(t, "-10.50 USD", a.Neg().String())

	reversed, err := b.Add(a)
	require.NoError(t, err)
	assert.Equal(t, sum, reversed, "addition is commutative within one currency")
}

func TestMoneyCrossCurrencyRejected(t *testing.T) {
	usd, _ := ParseMoney("10.00", "USD")
	eur, _ := ParseMoney("10.00", "EUR")

	if _, err := usd.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("Add: expected ErrCurrencyMismatch, got %v", err)
	}
	if _, err := usd.Sub(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("Sub: expected ErrCurrencyMismatch, got %v", err)
	}
	if _, err := usd.Cmp(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("Cmp: expected ErrCurrencyMismatch, got %v", err)
	}
	assert.False(t, usd.SameCurrency(eur))
}

func TestMoneyPredicates(t *testing.T) {
	pos, _ := ParseMoney("0.01", "USD")
	assert.True(t, pos.IsPositive())
	assert.True(t, pos.Neg().IsNegative())
	assert.True(t, ZeroMoney("USD").IsZero())
}
