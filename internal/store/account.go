package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pulsebanking/pulse/internal/domain"
)

// AccountStore is tenant-scoped. Balance mutations go through GetForUpdate +
// UpdateBalance inside one transaction so concurrent mutations of the same
// account serialize instead of losing updates.
type AccountStore struct {
	db       DB
	tenantID string
}

const accountColumns = `id, tenant_id, customer_id, number, balance, status, created_at, updated_at`

func (s *AccountStore) Create(ctx context.Context, a *domain.Account) error {
	if err := stampTenant(&a.TenantID, s.tenantID); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO accounts (tenant_id, customer_id, number, balance, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		a.TenantID, a.CustomerID, a.Number, a.Balance, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND tenant_id = $2`, id)
}

func (s *AccountStore) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return s.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = $1 AND tenant_id = $2`, number)
}

func (s *AccountStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id)
}

func (s *AccountStore) get(ctx context.Context, query string, key any) (*domain.Account, error) {
	a := &domain.Account{}
	err := s.db.QueryRow(ctx, query, key, s.tenantID).Scan(
		&a.ID, &a.TenantID, &a.CustomerID, &a.Number, &a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AccountStore) UpdateBalance(ctx context.Context, a *domain.Account) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE accounts SET balance = $3, updated_at = NOW() WHERE id = $1 AND tenant_id = $2`,
		a.ID, s.tenantID, a.Balance,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
