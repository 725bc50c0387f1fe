package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pulsebanking/pulse/internal/domain"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

// writeDomainError maps the error taxonomy to stable codes and statuses.
// Financial mutation endpoints never collapse domain failures into a generic
// error: the caller can always tell insufficient funds from not-found from a
// wrong tenant.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domain.ErrInvalidCurrency):
		writeError(w, http.StatusBadRequest, "invalid_currency", err.Error())
	case errors.Is(err, domain.ErrCurrencyMismatch):
		writeError(w, http.StatusBadRequest, "currency_mismatch", err.Error())
	case errors.Is(err, domain.ErrMissingCounterparty):
		writeError(w, http.StatusBadRequest, "missing_counterparty", err.Error())
	case errors.Is(err, domain.ErrSameAccount):
		writeError(w, http.StatusBadRequest, "same_account", err.Error())
	case errors.Is(err, domain.ErrLimitExceeded):
		writeError(w, http.StatusUnprocessableEntity, "limit_exceeded", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_funds", err.Error())
	case errors.Is(err, domain.ErrNotReversible):
		writeError(w, http.StatusConflict, "not_reversible", err.Error())
	case errors.Is(err, domain.ErrAccountNotActive):
		writeError(w, http.StatusConflict, "account_not_active", err.Error())
	case errors.Is(err, domain.ErrAccountExists):
		writeError(w, http.StatusConflict, "account_exists", err.Error())
	case errors.Is(err, domain.ErrTenantAlreadyExists):
		writeError(w, http.StatusConflict, "tenant_exists", err.Error())
	case errors.Is(err, domain.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, "customer_not_found", err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, domain.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction_not_found", err.Error())
	case errors.Is(err, domain.ErrTenantNotFound):
		writeError(w, http.StatusNotFound, "unknown_tenant", err.Error())
	case errors.Is(err, domain.ErrTenantInactive):
		writeError(w, http.StatusForbidden, "tenant_inactive", err.Error())
	case errors.Is(err, domain.ErrAuditFailed):
		writeError(w, http.StatusInternalServerError, "audit_failed", "operation aborted: audit trail write failed")
	case errors.Is(err, domain.ErrCrossTenantWrite):
		// Integration bug, not client input: fail loudly.
		writeError(w, http.StatusInternalServerError, "cross_tenant_write", "cross-tenant write rejected")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
