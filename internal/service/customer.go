package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/store"
)

type CustomerService struct {
	stores domain.ScopedFactory
	audit  *AuditRecorder
	logger *zap.Logger
}

func NewCustomerService(stores domain.ScopedFactory, audit *AuditRecorder, logger *zap.Logger) *CustomerService {
	return &CustomerService{stores: stores, audit: audit, logger: logger}
}

func (s *CustomerService) Create(ctx context.Context, tc domain.TenantContext, firstName, lastName, email, phone string) (*domain.Customer, error) {
	customer, err := domain.NewCustomer(tc.ID(), firstName, lastName, email, phone)
	if err != nil {
		return nil, err
	}

	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	err = scoped.WithTx(ctx, func(tx domain.ScopedStore) error {
		if err := tx.Customers().Create(ctx, customer); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, "CreateCustomer", "Customer", customer.ID.String(),
			fmt.Sprintf("customer %s %s created", customer.FirstName, customer.LastName))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("tenant_id", tc.ID()),
		zap.String("customer_id", customer.ID.String()),
	)
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, tc domain.TenantContext, id uuid.UUID) (*domain.Customer, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	c, err := scoped.Customers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *CustomerService) List(ctx context.Context, tc domain.TenantContext) ([]domain.Customer, error) {
	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return nil, err
	}
	return scoped.Customers().List(ctx)
}
