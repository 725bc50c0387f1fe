package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/domain"
)

// Full onboarding-to-deposit flow through the real services against the
// in-memory stores.
func TestTenantOnboardingToFirstDeposit(t *testing.T) {
	ts := newMemoryTenantStore()
	db := newMemoryDB()
	logger := zap.NewNop()
	factory := &memoryFactory{db: db}
	audit := NewAuditRecorder(logger)

	registry := NewRegistryService(ts, factory, audit, logger)
	customers := NewCustomerService(factory, audit, logger)
	accounts := NewAccountService(factory, audit, logger)
	ledger := NewLedgerService(factory, audit, logger)
	ctx := context.Background()

	tenant, err := registry.Register(ctx, RegisterTenantParams{
		BankName:     "Acme Bank",
		CurrencyCode: "USD",
		AdminEmail:   "ops@acme-bank.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "acmebank", tenant.ID)

	tc, err := registry.Resolve(ctx, tenant.ID)
	require.NoError(t, err)

	customer, err := customers.Create(ctx, tc, "Jane", "Doe", "jane@acme-bank.example", "")
	require.NoError(t, err)

	account, err := accounts.Open(ctx, tc, customer.ID, "ACC-001", decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", account.Balance.StringFixed(2))

	amount, err := domain.ParseMoney("50.00", tc.CurrencyCode())
	require.NoError(t, err)
	result, err := ledger.Deposit(ctx, tc, account.ID, amount, "opening deposit")
	require.NoError(t, err)

	assert.Equal(t, "150.00", result.Account.Balance.StringFixed(2))
	assert.Equal(t, domain.TransactionDeposit, result.Transaction.Type)
	assert.Equal(t, "50.00 USD", result.Transaction.Amount.String())
	require.NotNil(t, result.Transaction.RunningBalance)
	assert.Equal(t, "150.00 USD", result.Transaction.RunningBalance.String())

	txns, err := ledger.AccountTransactions(ctx, tc, account.ID, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 1, "exactly one transaction after the first deposit")

	// Every step of the flow left an audit entry.
	actions := make([]string, 0, len(db.audits))
	for _, entry := range db.audits {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []string{"RegisterTenant", "CreateCustomer", "OpenAccount", "deposit"}, actions)
}
