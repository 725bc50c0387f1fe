package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pulsebanking/pulse/internal/domain"
)

// TransactionStore is tenant-scoped and append-mostly: rows are inserted once
// and never updated afterwards.
type TransactionStore struct {
	db       DB
	tenantID string
}

const transactionColumns = `id, tenant_id, account_id, counterparty_account_id, type,
	 amount, currency, running_balance, reference, description,
	 value_date, processed_at, external_reference, metadata, created_at`

func (s *TransactionStore) Create(ctx context.Context, t *domain.BankTransaction) error {
	if err := stampTenant(&t.TenantID, s.tenantID); err != nil {
		return err
	}
	var running *decimal.Decimal
	if t.RunningBalance != nil {
		running = &t.RunningBalance.Amount
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO bank_transactions (tenant_id, account_id, counterparty_account_id, type,
		   amount, currency, running_balance, reference, description,
		   value_date, processed_at, external_reference, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING id, created_at`,
		t.TenantID, t.AccountID, t.CounterpartyID, t.Type,
		t.Amount.Amount, t.Amount.Currency, running, t.Reference, t.Description,
		t.ValueDate, t.ProcessedAt, t.ExternalRef, t.Metadata,
	).Scan(&t.ID, &t.CreatedAt)
}

func (s *TransactionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankTransaction, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM bank_transactions WHERE id = $1 AND tenant_id = $2`,
		id, s.tenantID,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TransactionStore) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.BankTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+transactionColumns+` FROM bank_transactions
		 WHERE (account_id = $1 OR counterparty_account_id = $1) AND tenant_id = $2
		 ORDER BY processed_at DESC
		 LIMIT $3`,
		accountID, s.tenantID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []domain.BankTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.BankTransaction, error) {
	t := &domain.BankTransaction{}
	var (
		amount   decimal.Decimal
		currency string
		running  *decimal.Decimal
	)
	err := row.Scan(&t.ID, &t.TenantID, &t.AccountID, &t.CounterpartyID, &t.Type,
		&amount, &currency, &running, &t.Reference, &t.Description,
		&t.ValueDate, &t.ProcessedAt, &t.ExternalRef, &t.Metadata, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Amount = domain.Money{Amount: amount, Currency: currency}
	if running != nil {
		t.RunningBalance = &domain.Money{Amount: *running, Currency: currency}
	}
	return t, nil
}
