package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pulsebanking/pulse/internal/domain"
)

// DB is the subset of pgxpool.Pool and pgx.Tx the scoped stores use, so one
// store implementation serves both pooled and transactional units of work.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Scoped binds every tenant-owned store to one tenant for one unit of work.
// Construction fails closed: without a resolved tenant there is no data
// access at all.
type Scoped struct {
	db       DB
	tenantID string

	customers    *CustomerStore
	accounts     *AccountStore
	transactions *TransactionStore
	audit        *AuditStore
}

func NewScoped(db DB, tc domain.TenantContext) (*Scoped, error) {
	return newScoped(db, tc.ID())
}

func newScoped(db DB, tenantID string) (*Scoped, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, domain.ErrMissingTenant
	}
	return &Scoped{
		db:           db,
		tenantID:     tenantID,
		customers:    &CustomerStore{db: db, tenantID: tenantID},
		accounts:     &AccountStore{db: db, tenantID: tenantID},
		transactions: &TransactionStore{db: db, tenantID: tenantID},
		audit:        &AuditStore{db: db, tenantID: tenantID},
	}, nil
}

func (s *Scoped) TenantID() string                      { return s.tenantID }
func (s *Scoped) Customers() domain.CustomerStore       { return s.customers }
func (s *Scoped) Accounts() domain.AccountStore         { return s.accounts }
func (s *Scoped) Transactions() domain.TransactionStore { return s.transactions }
func (s *Scoped) Audit() domain.AuditStore              { return s.audit }

// WithTx rebinds the scoped stores to one database transaction and runs fn.
// Any error rolls the whole unit of work back.
func (s *Scoped) WithTx(ctx context.Context, fn func(domain.ScopedStore) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inner, err := newScoped(tx, s.tenantID)
	if err != nil {
		return err
	}
	if err := fn(inner); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// stampTenant fills an unset tenant field with the bound tenant and rejects a
// mismatching one before anything reaches the database.
func stampTenant(entityTenant *string, bound string) error {
	if *entityTenant == "" {
		*entityTenant = bound
		return nil
	}
	if *entityTenant != bound {
		return fmt.Errorf("%w: have %q, store is bound to %q", domain.ErrCrossTenantWrite, *entityTenant, bound)
	}
	return nil
}

// Factory builds one Scoped per (tenant, unit-of-work), routing dedicated
// tenants to their own pool.
type Factory struct {
	router *PoolRouter
}

func NewFactory(router *PoolRouter) *Factory {
	return &Factory{router: router}
}

func (f *Factory) Scoped(ctx context.Context, tc domain.TenantContext) (domain.ScopedStore, error) {
	if strings.TrimSpace(tc.ID()) == "" {
		return nil, domain.ErrMissingTenant
	}
	pool, err := f.router.For(ctx, tc.ConnectionTarget())
	if err != nil {
		return nil, err
	}
	return NewScoped(pool, tc)
}
