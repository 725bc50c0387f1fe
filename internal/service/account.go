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

type AccountService struct {
	stores domain.ScopedFactory
	audit  *AuditRecorder
	logger *zap.Logger
}

func NewAccountService(stores domain.ScopedFactory, audit *AuditRecorder, logger *zap.Logger) *AccountService {
	return &AccountService{stores: stores, audit: audit, logger: logger}
}

// Open creates an account for an existing customer of the same tenant. The
// customer check, the insert and the audit entry share one unit of work.
func (s *AccountService) Open(ctx context.Context, tc domain.TenantContext, customerID uuid.UUID, number string, openingBalance decimal.Decimal) (*domain.Account, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	err = scoped.WithTx(ctx, func(tx domain.ScopedStore) error {
		customer, err := tx.Customers().GetByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, customerID)
			}
			return err
		}

		account, err = domain.NewAccount(tc.ID(), number, customer.ID, openingBalance)
		if err != nil {
			return err
		}
		if err := tx.Accounts().Create(ctx, account); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("%w: %s", domain.ErrAccountExists, number)
			}
			return err
		}
		return s.audit.Record(ctx, tx, "OpenAccount", "Account", account.ID.String(),
			fmt.Sprintf("account %s opened with balance %s %s", account.Number, account.Balance.StringFixed(2), tc.CurrencyCode()))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account opened",
		zap.String("tenant_id", tc.ID()),
		zap.String("account_id", account.ID.String()),
		zap.String("number", account.Number),
	)
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Account, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	a, err := scoped.Accounts().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

func (s *AccountService) GetByNumber(ctx context.Context, tc domain.TenantContext, number string) (*domain.Account, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	a, err := scoped.Accounts().GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
		}
		return nil, err
	}
	return a, nil
}
