package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pulsebanking/pulse/internal/domain"
)

// TenantHeader carries the tenant identifier on every request.
const TenantHeader = "X-Tenant-Id"

type contextKey string

const tenantContextKey contextKey = "tenant"

// TenantResolver converts a raw tenant identifier into a validated
// TenantContext. Implemented by service.RegistryService.
type TenantResolver interface {
	Resolve(ctx context.Context, rawID string) (domain.TenantContext, error)
}

// Route identifies one method+path pair on the resolution allow-list.
type Route struct {
	Method string
	Path   string
}

// TenantFromContext returns the TenantContext resolved for this request.
func TenantFromContext(ctx context.Context) (domain.TenantContext, bool) {
	tc, ok := ctx.Value(tenantContextKey).(domain.TenantContext)
	return tc, ok
}

// ResolveTenant rejects any request whose tenant is missing, unknown or
// inactive before handler logic runs, and attaches the resolved context
// exactly once otherwise.
//
// The bypass list is the single escape hatch: tenant registration has no
// tenant yet. It is an explicit method+path allow-list, never a pattern or
// suffix match.
func ResolveTenant(resolver TenantResolver, bypass ...Route) func(http.Handler) http.Handler {
	allow := make(map[Route]struct{}, len(bypass))
	for _, r := range bypass {
		allow[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := allow[Route{Method: r.Method, Path: r.URL.Path}]; ok {
				next.ServeHTTP(w, r)
				return
			}

			tc, err := resolver.Resolve(r.Context(), r.Header.Get(TenantHeader))
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrMissingTenant):
					writeError(w, http.StatusBadRequest, "missing_tenant", "missing "+TenantHeader+" header")
				case errors.Is(err, domain.ErrTenantNotFound):
					writeError(w, http.StatusBadRequest, "unknown_tenant", "unknown tenant")
				case errors.Is(err, domain.ErrTenantInactive):
					writeError(w, http.StatusForbidden, "tenant_inactive", "tenant is not active")
				default:
					writeError(w, http.StatusInternalServerError, "tenant_resolution_failed", "tenant resolution failed")
				}
				return
			}

			ctx := context.WithValue(r.Context(), tenantContextKey, tc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "error": msg})
}
