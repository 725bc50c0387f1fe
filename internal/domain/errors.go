package domain

import "errors"

// Tenant resolution errors. These are rejected before any ledger logic runs
// and must stay distinguishable from each other.
var (
	ErrMissingTenant       = errors.New("tenant identifier is missing")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantInactive      = errors.New("tenant is not active")
	ErrTenantAlreadyExists = errors.New("tenant already exists")
)

// Isolation violations are programmer errors, never silently corrected.
var ErrCrossTenantWrite = errors.New("entity is stamped with a different tenant")

// Domain validation errors, recoverable by the caller.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrAccountNotActive    = errors.New("account is not active")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrMissingCounterparty = errors.New("counterparty account is required")
	ErrSameAccount         = errors.New("counterparty must be a different account")
	ErrLimitExceeded       = errors.New("amount exceeds the tenant transaction limit")
	ErrNotReversible       = errors.New("transaction cannot be reversed")
)

// Not-found errors, distinct from validation failures.
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account number already in use")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ErrAuditFailed wraps a failed audit append so callers can tell it apart
// from the operation it annotates.
var ErrAuditFailed = errors.New("audit trail write failed")
