package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pulsebanking/pulse/internal/api/middleware"
	"github.com/pulsebanking/pulse/internal/service"
)

type AccountHandler struct {
	svc    *service.AccountService
	ledger *service.LedgerService
}

func NewAccountHandler(svc *service.AccountService, ledger *service.LedgerService) *AccountHandler {
	return &AccountHandler{svc: svc, ledger: ledger}
}

type createAccountRequest struct {
	CustomerID     string `json:"customer_id"`
	Number         string `json:"number"`
	OpeningBalance string `json:"opening_balance,omitempty"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid customer id")
		return
	}
	if req.Number == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "number is required")
		return
	}

	opening := decimal.Zero
	if req.OpeningBalance != "" {
		opening, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "opening_balance must be a decimal")
			return
		}
	}

	account, err := h.svc.Open(r.Context(), tc, customerID, req.Number, opening)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid account id")
		return
	}

	account, err := h.svc.Get(r.Context(), tc, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid account id")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	txns, err := h.ledger.AccountTransactions(r.Context(), tc, id, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}
