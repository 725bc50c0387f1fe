package store

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsebanking/pulse/internal/domain"
)

// stubRow assigns canned column values into Scan destinations. A nil value
// leaves the destination at its zero value, which for pointer destinations is
// how a NULL column scans.
type stubRow struct {
	vals []any
	err  error
}

func (r *stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		if i >= len(r.vals) || r.vals[i] == nil {
			continue
		}
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}

type stubDB struct {
	row *stubRow
	tag pgconn.CommandTag
	err error
}

func (db *stubDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return db.tag, db.err
}

func (db *stubDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, db.err
}

func (db *stubDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return db.row
}

func (db *stubDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, db.err
}

func TestTenantGetScansNullModifiedBy(t *testing.T) {
	// A freshly registered tenant has never been modified: modified_at and
	// modified_by are NULL.
	row := &stubRow{vals: []any{
		"firstnational", "First National", domain.DeploymentShared, "", domain.InstanceProduction, "",
		"USD", decimal.NewFromInt(10000), "UTC", true,
		time.Now().UTC(), "admin@firstnational.example", nil, nil, nil, true,
	}}
	store := NewTenantStore(&stubDB{row: row})

	tenant, err := store.Get(context.Background(), "firstnational")
	require.NoError(t, err)
	assert.Equal(t, "firstnational", tenant.ID)
	assert.Equal(t, "USD", tenant.CurrencyCode)
	assert.Empty(t, tenant.ModifiedBy)
	assert.Nil(t, tenant.ModifiedAt)
}

func TestTenantGetScansModifiedBy(t *testing.T) {
	modifiedAt := time.Now().UTC()
	modifiedBy := "ops@firstnational.example"
	row := &stubRow{vals: []any{
		"firstnational", "First National", domain.DeploymentShared, "", domain.InstanceProduction, "",
		"USD", decimal.Zero, "UTC", false,
		time.Now().UTC(), "admin@firstnational.example", &modifiedAt, &modifiedBy, nil, true,
	}}
	store := NewTenantStore(&stubDB{row: row})

	tenant, err := store.Get(context.Background(), "firstnational")
	require.NoError(t, err)
	assert.Equal(t, "ops@firstnational.example", tenant.ModifiedBy)
	require.NotNil(t, tenant.ModifiedAt)
	assert.False(t, tenant.IsActive)
}

func TestTenantGetNotFound(t *testing.T) {
	store := NewTenantStore(&stubDB{row: &stubRow{err: pgx.ErrNoRows}})

	_, err := store.Get(context.Background(), "nosuchbank")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTenantCreateConflict(t *testing.T) {
	store := NewTenantStore(&stubDB{row: &stubRow{err: &pgconn.PgError{Code: "23505"}}})

	err := store.Create(context.Background(), &domain.Tenant{ID: "firstnational", Name: "First National"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTenantSetActiveNotFound(t *testing.T) {
	store := NewTenantStore(&stubDB{tag: pgconn.NewCommandTag("UPDATE 0")})

	err := store.SetActive(context.Background(), "nosuchbank", false, "ops")
	assert.ErrorIs(t, err, ErrNotFound)
}
