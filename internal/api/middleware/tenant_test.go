package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsebanking/pulse/internal/domain"
)

type stubResolver struct {
	tenants map[string]*domain.Tenant
}

func (r *stubResolver) Resolve(ctx context.Context, rawID string) (domain.TenantContext, error) {
	if rawID == "" {
		return domain.TenantContext{}, domain.ErrMissingTenant
	}
	t, ok := r.tenants[rawID]
	if !ok {
		return domain.TenantContext{}, domain.ErrTenantNotFound
	}
	if !t.IsActive {
		return domain.TenantContext{}, domain.ErrTenantInactive
	}
	return domain.NewTenantContext(t), nil
}

func newStubResolver() *stubResolver {
	return &stubResolver{tenants: map[string]*domain.Tenant{
		"firstnational": {ID: "firstnational", Name: "First National", CurrencyCode: "USD", IsActive: true},
		"dormant":       {ID: "dormant", Name: "Dormant Bank", CurrencyCode: "USD", IsActive: false},
	}}
}

func serveResolved(t *testing.T, req *http.Request, bypass ...Route) (*httptest.ResponseRecorder, *domain.TenantContext) {
	t.Helper()
	var captured *domain.TenantContext
	handler := ResolveTenant(newStubResolver(), bypass...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tc, ok := TenantFromContext(r.Context()); ok {
			captured = &tc
		}
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["code"]
}

func TestResolveTenantMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)

	rec, captured := serveResolved(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_tenant", errorCode(t, rec))
	assert.Nil(t, captured, "handler must not run without a tenant")
}

func TestResolveTenantUnknown(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set(TenantHeader, "nosuchbank")

	rec, captured := serveResolved(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_tenant", errorCode(t, rec))
	assert.Nil(t, captured)
}

func TestResolveTenantInactive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set(TenantHeader, "dormant")

	rec, captured := serveResolved(t, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "tenant_inactive", errorCode(t, rec))
	assert.Nil(t, captured)
}

func TestResolveTenantAttachesContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/accounts", nil)
	req.Header.Set(TenantHeader, "firstnational")

	rec, captured := serveResolved(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "firstnational", captured.ID())
	assert.Equal(t, "USD", captured.CurrencyCode())
}

func TestResolveTenantBypassRoute(t *testing.T) {
	bypass := Route{Method: http.MethodPost, Path: "/v1/tenants"}

	// Registration has no tenant yet and must pass without the header.
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants", nil)
	rec, captured := serveResolved(t, req, bypass)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured, "bypassed requests carry no tenant context")

	// The allow-list matches method and path exactly.
	req = httptest.NewRequest(http.MethodGet, "/v1/tenants", nil)
	rec, _ = serveResolved(t, req, bypass)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "same path with a different method is not bypassed")

	req = httptest.NewRequest(http.MethodPost, "/v1/tenants/extra", nil)
	rec, _ = serveResolved(t, req, bypass)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a longer path sharing the prefix is not bypassed")
}
