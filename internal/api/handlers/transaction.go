package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulsebanking/pulse/internal/api/middleware"
	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/service"
)

type TransactionHandler struct {
	ledger *service.LedgerService
}

func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type mutationRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.Withdraw)
}

func (h *TransactionHandler) mutate(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, tc domain.TenantContext, accountID uuid.UUID, amount domain.Money, description string) (*service.MutationResult, error)) {

	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid account id")
		return
	}

	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	amount, err := domain.ParseMoney(req.Amount, tc.CurrencyCode())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := op(r.Context(), tc, accountID, amount, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description,omitempty"`
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid from_account_id")
		return
	}
	toID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid to_account_id")
		return
	}
	amount, err := domain.ParseMoney(req.Amount, tc.CurrencyCode())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.ledger.Transfer(r.Context(), tc, fromID, toID, amount, req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type reverseRequest struct {
	Reason string `json:"reason"`
}

func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid transaction id")
		return
	}

	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "reason is required")
		return
	}

	result, err := h.ledger.Reverse(r.Context(), tc, id, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid transaction id")
		return
	}

	txn, err := h.ledger.Transaction(r.Context(), tc, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}
