package middleware

import (
	"net/http"

	"github.com/pulsebanking/pulse/internal/domain"
)

const (
	// UserIDHeader and UserNameHeader carry audit attribution from the
	// identity collaborator. Both are optional: system-initiated operations
	// audit with an empty actor.
	UserIDHeader   = "X-User-Id"
	UserNameHeader = "X-User-Name"
)

// Actor stores the acting user, if any, in the request context for audit
// attribution.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := domain.Actor{
			ID:   r.Header.Get(UserIDHeader),
			Name: r.Header.Get(UserNameHeader),
		}
		if actor.ID == "" && actor.Name == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(domain.WithActor(r.Context(), actor)))
	})
}
