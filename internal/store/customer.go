package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pulsebanking/pulse/internal/domain"
)

// CustomerStore is tenant-scoped: every statement filters on the bound tenant.
type CustomerStore struct {
	db       DB
	tenantID string
}

func (s *CustomerStore) Create(ctx context.Context, c *domain.Customer) error {
	if err := stampTenant(&c.TenantID, s.tenantID); err != nil {
		return err
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO customers (tenant_id, first_name, last_name, email, phone_number)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		c.TenantID, c.FirstName, c.LastName, c.Email, c.PhoneNumber,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (s *CustomerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, first_name, last_name, email, phone_number, created_at, updated_at
		 FROM customers WHERE id = $1 AND tenant_id = $2`,
		id, s.tenantID,
	).Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CustomerStore) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, tenant_id, first_name, last_name, email, phone_number, created_at, updated_at
		 FROM customers WHERE tenant_id = $1 ORDER BY created_at`,
		s.tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
