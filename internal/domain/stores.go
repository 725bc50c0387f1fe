package domain

import (
	"context"

	"github.com/google/uuid"
)

// TenantStore is the authoritative catalog of tenants. Lookups are idempotent
// and side-effect-free. Tenants are deactivated via SetActive, never deleted.
type TenantStore interface {
	Create(ctx context.Context, t *Tenant) error
	Get(ctx context.Context, id string) (*Tenant, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]Tenant, error)
	SetActive(ctx context.Context, id string, active bool, modifiedBy string) error
}

type CustomerStore interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context) ([]Customer, error)
}

type AccountStore interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	// GetForUpdate reads the account with a row lock so concurrent balance
	// mutations of the same account serialize. Only valid inside WithTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdateBalance(ctx context.Context, a *Account) error
}

type TransactionStore interface {
	Create(ctx context.Context, t *BankTransaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*BankTransaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]BankTransaction, error)
}

type AuditStore interface {
	Append(ctx context.Context, entry *AuditTrail) error
}

// ScopedStore is a data-access facade bound to exactly one tenant. Every read
// is filtered to that tenant's rows and every insert is stamped with its
// identifier; there is no way to reach another tenant's data through it.
// Instances live for one unit of work and are never reused across tenants.
type ScopedStore interface {
	TenantID() string
	Customers() CustomerStore
	Accounts() AccountStore
	Transactions() TransactionStore
	Audit() AuditStore
	// WithTx runs fn against a ScopedStore bound to one database transaction.
	// Everything fn writes commits together or not at all.
	WithTx(ctx context.Context, fn func(ScopedStore) error) error
}

// ScopedFactory builds one ScopedStore per (tenant, unit-of-work) pair. It
// must fail closed when the tenant context is unresolved.
type ScopedFactory interface {
	Scoped(ctx context.Context, tc TenantContext) (ScopedStore, error)
}
