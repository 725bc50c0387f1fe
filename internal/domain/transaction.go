package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionDeposit      TransactionType = "deposit"
	TransactionWithdrawal   TransactionType = "withdrawal"
	TransactionTransfer     TransactionType = "transfer"
	TransactionFee          TransactionType = "fee"
	TransactionInterest     TransactionType = "interest"
	TransactionAdjustment   TransactionType = "adjustment"
	TransactionDirectDebit  TransactionType = "direct_debit"
	TransactionDirectCredit TransactionType = "direct_credit"
)

// BankTransaction is the durable record of one balance mutation. Once created
// it is immutable except for the one-time running-balance snapshot, which is
// written through SetRunningBalance only.
type BankTransaction struct {
	ID             uuid.UUID         `json:"id"`
	TenantID       string            `json:"tenant_id"`
	AccountID      uuid.UUID         `json:"account_id"`
	CounterpartyID *uuid.UUID        `json:"counterparty_account_id,omitempty"`
	Type           TransactionType   `json:"type"`
	Amount         Money             `json:"amount"`
	RunningBalance *Money            `json:"running_balance,omitempty"`
	Reference      string            `json:"reference"`
	Description    string            `json:"description"`
	ValueDate      time.Time         `json:"value_date"`
	ProcessedAt    time.Time         `json:"processed_at"`
	ExternalRef    string            `json:"external_reference,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func NewBankTransaction(tenantID string, accountID uuid.UUID, txType TransactionType, amount Money, reference, description string) (*BankTransaction, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("new transaction: tenant id cannot be empty")
	}
	if accountID == uuid.Nil {
		return nil, fmt.Errorf("new transaction: account id cannot be empty")
	}
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("new transaction: reference cannot be empty")
	}
	now := time.Now().UTC()
	return &BankTransaction{
		TenantID:    tenantID,
		AccountID:   accountID,
		Type:        txType,
		Amount:      amount,
		Reference:   reference,
		Description: description,
		ValueDate:   now,
		ProcessedAt: now,
		Metadata:    map[string]string{},
	}, nil
}

// SetRunningBalance records the post-mutation balance snapshot. It may be set
// exactly once and must share the transaction's currency.
func (t *BankTransaction) SetRunningBalance(balance Money) error {
	if t.RunningBalance != nil {
		return fmt.Errorf("running balance already set for transaction %s", t.Reference)
	}
	if !balance.SameCurrency(t.Amount) {
		return fmt.Errorf("%w: running balance %s does not match transaction currency %s",
			ErrCurrencyMismatch, balance.Currency, t.Amount.Currency)
	}
	t.RunningBalance = &balance
	return nil
}
