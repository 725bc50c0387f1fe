package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pulsebanking/pulse/internal/domain"
)

// TenantStore is the persisted tenant registry. Unlike the tenant-owned
// stores it is deliberately unscoped: it is what resolution consults before
// any tenant context exists.
type TenantStore struct {
	db DB
}

func NewTenantStore(db DB) *TenantStore {
	return &TenantStore{db: db}
}

const tenantColumns = `id, name, deployment_mode, region, instance_class, connection_target,
	 currency_code, transaction_limit, time_zone, is_active,
	 created_at, created_by, modified_at, modified_by, trial_ends_at, data_sovereign`

func (s *TenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO tenants (id, name, deployment_mode, region, instance_class, connection_target,
		   currency_code, transaction_limit, time_zone, is_active, created_by, trial_ends_at, data_sovereign)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING created_at`,
		t.ID, t.Name, t.DeploymentMode, t.Region, t.InstanceClass, t.ConnectionTarget,
		t.CurrencyCode, t.TransactionLimit, t.TimeZone, t.IsActive, t.CreatedBy, t.TrialEndsAt, t.DataSovereign,
	).Scan(&t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *TenantStore) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	// modified_by is NULL until the first modification.
	var modifiedBy *string
	err := s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.DeploymentMode, &t.Region, &t.InstanceClass, &t.ConnectionTarget,
		&t.CurrencyCode, &t.TransactionLimit, &t.TimeZone, &t.IsActive,
		&t.CreatedAt, &t.CreatedBy, &t.ModifiedAt, &modifiedBy, &t.TrialEndsAt, &t.DataSovereign)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if modifiedBy != nil {
		t.ModifiedBy = *modifiedBy
	}
	return t, nil
}

func (s *TenantStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

func (s *TenantStore) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := s.db.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		var modifiedBy *string
		if err := rows.Scan(&t.ID, &t.Name, &t.DeploymentMode, &t.Region, &t.InstanceClass, &t.ConnectionTarget,
			&t.CurrencyCode, &t.TransactionLimit, &t.TimeZone, &t.IsActive,
			&t.CreatedAt, &t.CreatedBy, &t.ModifiedAt, &modifiedBy, &t.TrialEndsAt, &t.DataSovereign); err != nil {
			return nil, err
		}
		if modifiedBy != nil {
			t.ModifiedBy = *modifiedBy
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (s *TenantStore) SetActive(ctx context.Context, id string, active bool, modifiedBy string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tenants SET is_active = $2, modified_at = NOW(), modified_by = $3 WHERE id = $1`,
		id, active, modifiedBy,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
