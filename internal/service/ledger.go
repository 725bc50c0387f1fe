package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/store"
)

// LedgerService is the money-safe mutation path for account balances. Every
// operation runs inside one scoped unit of work: the balance change, its
// BankTransaction record and its audit entry commit together or not at all.
type LedgerService struct {
	stores domain.ScopedFactory
	audit  *AuditRecorder
	logger *zap.Logger
}

func NewLedgerService(stores domain.ScopedFactory, audit *AuditRecorder, logger *zap.Logger) *LedgerService {
	return &LedgerService{stores: stores, audit: audit, logger: logger}
}

// MutationResult is the outcome of one successful balance mutation.
type MutationResult struct {
	Account     *domain.Account         `json:"account"`
	Transaction *domain.BankTransaction `json:"transaction"`
}

func (s *LedgerService) Deposit(ctx context.Context, tc domain.TenantContext, accountID uuid.UUID, amount domain.Money, description string) (*MutationResult, error) {
	if err := s.validateAmount(tc, amount); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tc, accountID, domain.TransactionDeposit, amount, description, func(a *domain.Account) error {
		return a.Deposit(amount.Amount)
	})
}

func (s *LedgerService) Withdraw(ctx context.Context, tc domain.TenantContext, accountID uuid.UUID, amount domain.Money, description string) (*MutationResult, error) {
	if err := s.validateAmount(tc, amount); err != nil {
		return nil, err
	}
	return s.mutate(ctx, tc, accountID, domain.TransactionWithdrawal, amount, description, func(a *domain.Account) error {
		return a.Withdraw(amount.Amount)
	})
}

// Transfer debits one account and credits another as a single unit of work.
// A partially applied transfer is never observable: both legs and the
// transaction record commit together. The counterparty is looked up through
// the same tenant-scoped store, so a cross-tenant target is simply not found.
func (s *LedgerService) Transfer(ctx context.Context, tc domain.TenantContext, fromID, toID uuid.UUID, amount domain.Money, description string) (*MutationResult, error) {
	if toID == uuid.Nil {
		return nil, domain.ErrMissingCounterparty
	}
	if fromID == toID {
		return nil, domain.ErrSameAccount
	}
	if err := s.validateAmount(tc, amount); err != nil {
		return nil, err
	}

	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}

	var result *MutationResult
	err = scoped.WithTx(ctx, func(tx domain.ScopedStore) error {
		from, to, err := lockPair(ctx, tx, fromID, toID)
		if err != nil {
			return err
		}
		if err := from.Withdraw(amount.Amount); err != nil {
			return err
		}
		if err := to.Deposit(amount.Amount); err != nil {
			return err
		}

		txn, err := domain.NewBankTransaction(tc.ID(), from.ID, domain.TransactionTransfer, amount, newReference(), description)
		if err != nil {
			return err
		}
		txn.CounterpartyID = &to.ID
		if err := s.snapshotBalance(txn, from.Balance); err != nil {
			return err
		}
		if err := tx.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateBalance(ctx, from); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateBalance(ctx, to); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, "Transfer", "BankTransaction", txn.ID.String(),
			fmt.Sprintf("transferred %s from %s to %s", amount, from.Number, to.Number)); err != nil {
			return err
		}
		result = &MutationResult{Account: from, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer processed",
		zap.String("tenant_id", tc.ID()),
		zap.String("transaction_id", result.Transaction.ID.String()),
		zap.String("amount", amount.String()),
	)
	return result, nil
}

// Reverse creates a compensating adjustment for a prior transaction and
// applies it through the same deposit/withdraw path. The original record is
// never touched.
func (s *LedgerService) Reverse(ctx context.Context, tc domain.TenantContext, transactionID uuid.UUID, reason string) (*MutationResult, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}

	var result *MutationResult
	err = scoped.WithTx(ctx, func(tx domain.ScopedStore) error {
		orig, err := tx.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, transactionID)
			}
			return err
		}
		// Adjustments are terminal: a reversal records −amount while its
		// applied effect is the opposite of the original's, so re-reversing
		// one would not restore the prior balance.
		if orig.Type == domain.TransactionAdjustment {
			return fmt.Errorf("%w: %s is an adjustment", domain.ErrNotReversible, orig.Reference)
		}

		reversal, err := domain.NewBankTransaction(tc.ID(), orig.AccountID, domain.TransactionAdjustment,
			orig.Amount.Neg(), "REV-"+orig.Reference,
			fmt.Sprintf("Reversal of %s: %s", orig.Reference, reason))
		if err != nil {
			return err
		}
		reversal.CounterpartyID = orig.CounterpartyID
		reversal.Metadata["reversed_transaction_id"] = orig.ID.String()

		// Undo the original's effect on each leg.
		delta := accountDelta(orig.Type, orig.Amount.Amount).Neg()
		if orig.CounterpartyID != nil {
			account, counterparty, err := lockPair(ctx, tx, orig.AccountID, *orig.CounterpartyID)
			if err != nil {
				return err
			}
			if err := applySigned(account, delta); err != nil {
				return err
			}
			if err := applySigned(counterparty, delta.Neg()); err != nil {
				return err
			}
			if err := s.snapshotBalance(reversal, account.Balance); err != nil {
				return err
			}
			if err := tx.Accounts().UpdateBalance(ctx, account); err != nil {
				return err
			}
			if err := tx.Accounts().UpdateBalance(ctx, counterparty); err != nil {
				return err
			}
			result = &MutationResult{Account: account, Transaction: reversal}
		} else {
			account, err := lockAccount(ctx, tx, orig.AccountID)
			if err != nil {
				return err
			}
			if err := applySigned(account, delta); err != nil {
				return err
			}
			if err := s.snapshotBalance(reversal, account.Balance); err != nil {
				return err
			}
			if err := tx.Accounts().UpdateBalance(ctx, account); err != nil {
				return err
			}
			result = &MutationResult{Account: account, Transaction: reversal}
		}

		if err := tx.Transactions().Create(ctx, reversal); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, "ReverseTransaction", "BankTransaction", orig.ID.String(),
			fmt.Sprintf("transaction %s reversed: %s", orig.Reference, reason))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction reversed",
		zap.String("tenant_id", tc.ID()),
		zap.String("original_id", transactionID.String()),
		zap.String("reversal_id", result.Transaction.ID.String()),
	)
	return result, nil
}

func (s *LedgerService) Transaction(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.BankTransaction, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	t, err := scoped.Transactions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

func (s *LedgerService) AccountTransactions(ctx context.Context, tc domain.TenantContext, accountID uuid.UUID, limit int) ([]domain.BankTransaction, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	if _, err := scoped.Accounts().GetByID(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountID)
		}
		return nil, err
	}
	return scoped.Transactions().ListByAccount(ctx, accountID, limit)
}

// mutate runs a single-account balance change inside one unit of work and
// records its transaction plus audit entry.
func (s *LedgerService) mutate(ctx context.Context, tc domain.TenantContext, accountID uuid.UUID, txType domain.TransactionType, amount domain.Money, description string, apply func(*domain.Account) error) (*MutationResult, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}

	var result *MutationResult
	err = scoped.WithTx(ctx, func(tx domain.ScopedStore) error {
		account, err := lockAccount(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if err := apply(account); err != nil {
			return err
		}

		txn, err := domain.NewBankTransaction(tc.ID(), account.ID, txType, amount, newReference(), description)
		if err != nil {
			return err
		}
		if err := s.snapshotBalance(txn, account.Balance); err != nil {
			return err
		}
		if err := tx.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateBalance(ctx, account); err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, string(txType), "BankTransaction", txn.ID.String(),
			fmt.Sprintf("processed %s of %s on account %s", txType, amount, account.Number)); err != nil {
			return err
		}
		result = &MutationResult{Account: account, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction processed",
		zap.String("tenant_id", tc.ID()),
		zap.String("transaction_id", result.Transaction.ID.String()),
		zap.String("type", string(txType)),
		zap.String("amount", amount.String()),
	)
	return result, nil
}

// validateAmount enforces the caller-facing checks that must fail before any
// row is touched: positive amount, tenant currency, tenant limit.
func (s *LedgerService) validateAmount(tc domain.TenantContext, amount domain.Money) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if tc.CurrencyCode() != "" && amount.Currency != tc.CurrencyCode() {
		return fmt.Errorf("%w: tenant currency is %s, got %s", domain.ErrCurrencyMismatch, tc.CurrencyCode(), amount.Currency)
	}
	if limit := tc.TransactionLimit(); limit.IsPositive() && amount.Amount.GreaterThan(limit) {
		return fmt.Errorf("%w: limit is %s", domain.ErrLimitExceeded, limit.StringFixed(2))
	}
	return nil
}

func (s *LedgerService) snapshotBalance(txn *domain.BankTransaction, balance decimal.Decimal) error {
	running, err := domain.NewMoney(balance, txn.Amount.Currency)
	if err != nil {
		return err
	}
	return txn.SetRunningBalance(running)
}

func lockAccount(ctx context.Context, tx domain.ScopedStore, id uuid.UUID) (*domain.Account, error) {
	a, err := tx.Accounts().GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

// lockPair locks two accounts in deterministic ID order so concurrent
// transfers between the same pair cannot deadlock, then returns them in the
// order asked for.
func lockPair(ctx context.Context, tx domain.ScopedStore, firstID, secondID uuid.UUID) (*domain.Account, *domain.Account, error) {
	a, b := firstID, secondID
	swapped := false
	if b.String() < a.String() {
		a, b = b, a
		swapped = true
	}
	first, err := lockAccount(ctx, tx, a)
	if err != nil {
		return nil, nil, err
	}
	second, err := lockAccount(ctx, tx, b)
	if err != nil {
		return nil, nil, err
	}
	if swapped {
		first, second = second, first
	}
	return first, second, nil
}

// accountDelta is the signed effect a transaction type has on its primary
// account's balance.
func accountDelta(txType domain.TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch txType {
	case domain.TransactionDeposit, domain.TransactionDirectCredit, domain.TransactionInterest:
		return amount
	case domain.TransactionWithdrawal, domain.TransactionDirectDebit, domain.TransactionFee, domain.TransactionTransfer:
		return amount.Neg()
	default:
		return amount
	}
}

func applySigned(a *domain.Account, delta decimal.Decimal) error {
	if delta.IsNegative() {
		return a.Withdraw(delta.Neg())
	}
	return a.Deposit(delta)
}

func newReference() string {
	return "TXN-" + uuid.NewString()
}
