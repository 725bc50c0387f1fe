package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pulsebanking/pulse/internal/api/middleware"
	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/service"
)

type TenantHandler struct {
	registry *service.RegistryService
}

func NewTenantHandler(registry *service.RegistryService) *TenantHandler {
	return &TenantHandler{registry: registry}
}

type registerTenantRequest struct {
	BankName         string `json:"bank_name"`
	CurrencyCode     string `json:"currency_code"`
	TimeZone         string `json:"time_zone,omitempty"`
	TransactionLimit string `json:"transaction_limit,omitempty"`
	DeploymentMode   string `json:"deployment_mode,omitempty"`
	Region           string `json:"region,omitempty"`
	InstanceClass    string `json:"instance_class,omitempty"`
	ConnectionTarget string `json:"connection_target,omitempty"`
	AdminEmail       string `json:"admin_email"`
}

type registerTenantResponse struct {
	TenantID     string `json:"tenant_id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
	IsActive     bool   `json:"is_active"`
}

// Register is the one route on the tenant-resolution bypass list: the tenant
// it creates does not exist yet.
func (h *TenantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.BankName == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "bank_name is required")
		return
	}
	if req.CurrencyCode == "" {
		writeError(w, http.StatusBadRequest, "invalid_body", "currency_code is required")
		return
	}

	limit := decimal.Zero
	if req.TransactionLimit != "" {
		var err error
		limit, err = decimal.NewFromString(req.TransactionLimit)
		if err != nil || limit.IsNegative() {
			writeError(w, http.StatusBadRequest, "invalid_body", "transaction_limit must be a non-negative decimal")
			return
		}
	}

	tenant, err := h.registry.Register(r.Context(), service.RegisterTenantParams{
		BankName:         req.BankName,
		CurrencyCode:     req.CurrencyCode,
		TimeZone:         req.TimeZone,
		TransactionLimit: limit,
		DeploymentMode:   domain.DeploymentMode(req.DeploymentMode),
		Region:           req.Region,
		InstanceClass:    domain.InstanceClass(req.InstanceClass),
		ConnectionTarget: req.ConnectionTarget,
		AdminEmail:       req.AdminEmail,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerTenantResponse{
		TenantID:     tenant.ID,
		Name:         tenant.Name,
		CurrencyCode: tenant.CurrencyCode,
		IsActive:     tenant.IsActive,
	})
}

// Get returns the caller's own registry entry. Another tenant's entry reads
// as not found.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}
	id := chi.URLParam(r, "id")
	if id != tc.ID() {
		writeError(w, http.StatusNotFound, "unknown_tenant", "tenant not found")
		return
	}

	tenant, err := h.registry.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tenant)
}

// Deactivate flips the caller's own tenant inactive. New requests are
// rejected as soon as the registry cache entry is invalidated.
func (h *TenantHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	tc, ok := middleware.TenantFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_tenant", "no tenant context")
		return
	}
	if chi.URLParam(r, "id") != tc.ID() {
		writeError(w, http.StatusNotFound, "unknown_tenant", "tenant not found")
		return
	}

	if err := h.registry.Deactivate(r.Context(), tc); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenant_id": tc.ID(), "is_active": false})
}
