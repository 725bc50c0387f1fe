package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/store"
)

// memoryDB is a tenant-aware in-memory backing store shared by every scoped
// view handed out by memoryFactory. WithTx serializes units of work and
// restores a snapshot on error, mirroring transactional rollback.
type memoryDB struct {
	mu sync.Mutex
	// txMu serializes units of work the way row locks do in the real store.
	txMu sync.Mutex

	customers    map[uuid.UUID]domain.Customer
	accounts     map[uuid.UUID]domain.Account
	transactions map[uuid.UUID]domain.BankTransaction
	audits       []domain.AuditTrail

	failAudit bool
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		customers:    make(map[uuid.UUID]domain.Customer),
		accounts:     make(map[uuid.UUID]domain.Account),
		transactions: make(map[uuid.UUID]domain.BankTransaction),
	}
}

func (db *memoryDB) snapshot() (map[uuid.UUID]domain.Customer, map[uuid.UUID]domain.Account, map[uuid.UUID]domain.BankTransaction, []domain.AuditTrail) {
	customers := make(map[uuid.UUID]domain.Customer, len(db.customers))
	for k, v := range db.customers {
		customers[k] = v
	}
	accounts := make(map[uuid.UUID]domain.Account, len(db.accounts))
	for k, v := range db.accounts {
		accounts[k] = v
	}
	transactions := make(map[uuid.UUID]domain.BankTransaction, len(db.transactions))
	for k, v := range db.transactions {
		transactions[k] = v
	}
	audits := make([]domain.AuditTrail, len(db.audits))
	copy(audits, db.audits)
	return customers, accounts, transactions, audits
}

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

type memoryScoped struct {
	db       *memoryDB
	tenantID string
}

func (s *memoryScoped) TenantID() string                      { return s.tenantID }
func (s *memoryScoped) Customers() domain.CustomerStore       { return &memoryCustomers{s} }
func (s *memoryScoped) Accounts() domain.AccountStore         { return &memoryAccounts{s} }
func (s *memoryScoped) Transactions() domain.TransactionStore { return &memoryTransactions{s} }
func (s *memoryScoped) Audit() domain.AuditStore              { return &memoryAudit{s} }

func (s *memoryScoped) WithTx(ctx context.Context, fn func(domain.ScopedStore) error) error {
	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.Lock()
	customers, accounts, transactions, audits := s.db.snapshot()
	s.db.mu.Unlock()

	if err := fn(s); err != nil {
		s.db.mu.Lock()
		s.db.customers = customers
		s.db.accounts = accounts
		s.db.transactions = transactions
		s.db.audits = audits
		s.db.mu.Unlock()
		return err
	}
	return nil
}

type memoryCustomers struct{ s *memoryScoped }

func (m *memoryCustomers) Create(ctx context.Context, c *domain.Customer) error {
	if err := stampTenant(&c.TenantID, m.s.tenantID); err != nil {
		return err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.s.db.mu.Lock()
	m.s.db.customers[c.ID] = *c
	m.s.db.mu.Unlock()
	return nil
}

func (m *memoryCustomers) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	c, ok := m.s.db.customers[id]
	if !ok || c.TenantID != m.s.tenantID {
		return nil, store.ErrNotFound
	}
	out := c
	return &out, nil
}

func (m *memoryCustomers) List(ctx context.Context) ([]domain.Customer, error) {
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	var out []domain.Customer
	for _, c := range m.s.db.customers {
		if c.TenantID == m.s.tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memoryAccounts struct{ s *memoryScoped }

func (m *memoryAccounts) Create(ctx context.Context, a *domain.Account) error {
	if err := stampTenant(&a.TenantID, m.s.tenantID); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	for _, existing := range m.s.db.accounts {
		if existing.TenantID == a.TenantID && existing.Number == a.Number {
			return store.ErrConflict
		}
	}
	m.s.db.accounts[a.ID] = *a
	return nil
}

func (m *memoryAccounts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	a, ok := m.s.db.accounts[id]
	if !ok || a.TenantID != m.s.tenantID {
		return nil, store.ErrNotFound
	}
	out := a
	return &out, nil
}

func (m *memoryAccounts) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	for _, a := range m.s.db.accounts {
		if a.TenantID == m.s.tenantID && a.Number == number {
			out := a
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memoryAccounts) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return m.GetByID(ctx, id)
}

func (m *memoryAccounts) UpdateBalance(ctx context.Context, a *domain.Account) error {
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	stored, ok := m.s.db.accounts[a.ID]
	if !ok || stored.TenantID != m.s.tenantID {
		return store.ErrNotFound
	}
	stored.Balance = a.Balance
	m.s.db.accounts[a.ID] = stored
	return nil
}

type memoryTransactions struct{ s *memoryScoped }

func (m *memoryTransactions) Create(ctx context.Context, t *domain.BankTransaction) error {
	if err := stampTenant(&t.TenantID, m.s.tenantID); err != nil {
		return err
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.s.db.mu.Lock()
	m.s.db.transactions[t.ID] = *t
	m.s.db.mu.Unlock()
	return nil
}

func (m *memoryTransactions) GetByID(ctx context.Context, id uuid.UUID) (*domain.BankTransaction, error) {
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	t, ok := m.s.db.transactions[id]
	if !ok || t.TenantID != m.s.tenantID {
		return nil, store.ErrNotFound
	}
	out := t
	return &out, nil
}

func (m *memoryTransactions) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.BankTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	m.s.db.mu.Lock()
	defer m.s.db.mu.Unlock()
	var out []domain.BankTransaction
	for _, t := range m.s.db.transactions {
		if t.TenantID != m.s.tenantID {
			continue
		}
		if t.AccountID == accountID || (t.CounterpartyID != nil && *t.CounterpartyID == accountID) {
			out = append(out, t)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memoryAudit struct{ s *memoryScoped }

func (m *memoryAudit) Append(ctx context.Context, entry *domain.AuditTrail) error {
	if m.s.db.failAudit {
		return errors.New("audit store unavailable")
	}
	if err := stampTenant(&entry.TenantID, m.s.tenantID); err != nil {
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	m.s.db.mu.Lock()
	m.s.db.audits = append(m.s.db.audits, *entry)
	m.s.db.mu.Unlock()
	return nil
}

type memoryFactory struct{ db *memoryDB }

func (f *memoryFactory) Scoped(ctx context.Context, tc domain.TenantContext) (domain.ScopedStore, error) {
	if tc.ID() == "" {
		return nil, domain.ErrMissingTenant
	}
	return &memoryScoped{db: f.db, tenantID: tc.ID()}, nil
}

// memoryTenantStore backs the registry tests.
type memoryTenantStore struct {
	mu      sync.Mutex
	tenants map[string]domain.Tenant
}

func newMemoryTenantStore() *memoryTenantStore {
	return &memoryTenantStore{tenants: make(map[string]domain.Tenant)}
}

func (s *memoryTenantStore) Create(ctx context.Context, t *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; ok {
		return store.ErrConflict
	}
	s.tenants[t.ID] = *t
	return nil
}

func (s *memoryTenantStore) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := t
	return &out, nil
}

func (s *memoryTenantStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tenants[id]
	return ok, nil
}

func (s *memoryTenantStore) List(ctx context.Context) ([]domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (s *memoryTenantStore) SetActive(ctx context.Context, id string, active bool, modifiedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return store.ErrNotFound
	}
	t.IsActive = active
	t.ModifiedBy = modifiedBy
	s.tenants[id] = t
	return nil
}

// testTenant builds a resolved context without going through the registry.
func testTenant(id, currency string, limit decimal.Decimal) domain.TenantContext {
	return domain.NewTenantContext(&domain.Tenant{
		ID:               id,
		Name:             id,
		CurrencyCode:     currency,
		TransactionLimit: limit,
		IsActive:         true,
	})
}

func newTestLedger(db *memoryDB) *LedgerService {
	logger := zap.NewNop()
	return NewLedgerService(&memoryFactory{db: db}, NewAuditRecorder(logger), logger)
}

// seedAccount inserts an account directly, bypassing the service layer.
func seedAccount(db *memoryDB, tenantID, number, balance string) uuid.UUID {
	a := domain.Account{
		ID:       uuid.New(),
		TenantID: tenantID,
		Number:   number,
		Balance:  decimal.RequireFromString(balance),
		Status:   domain.AccountActive,
	}
	a.CustomerID = uuid.New()
	db.accounts[a.ID] = a
	return a.ID
}
