package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
)

// Account belongs to exactly one tenant and one customer. The (tenant, number)
// pair is unique. The balance is mutated only through Deposit and Withdraw.
type Account struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   string          `json:"tenant_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Number     string          `json:"number"`
	Balance    decimal.Decimal `json:"balance"`
	Status     AccountStatus   `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewAccount builds an account. The opening balance may be zero but never
// negative.
func NewAccount(tenantID, number string, customerID uuid.UUID, openingBalance decimal.Decimal) (*Account, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("new account: tenant id cannot be empty")
	}
	if strings.TrimSpace(number) == "" {
		return nil, fmt.Errorf("new account: account number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("new account: customer id cannot be empty")
	}
	if openingBalance.IsNegative() {
		return nil, fmt.Errorf("new account: opening balance cannot be negative")
	}
	return &Account{
		TenantID:   tenantID,
		CustomerID: customerID,
		Number:     number,
		Balance:    openingBalance.RoundBank(2),
		Status:     AccountActive,
	}, nil
}

// Deposit credits the account. Amounts must be positive and the account must
// be active.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Status != AccountActive {
		return ErrAccountNotActive
	}
	a.Balance = a.Balance.Add(amount.RoundBank(2))
	return nil
}

// Withdraw debits the account. The balance never goes negative.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Status != AccountActive {
		return ErrAccountNotActive
	}
	amount = amount.RoundBank(2)
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}
