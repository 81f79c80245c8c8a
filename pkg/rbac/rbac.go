// Package rbac provides role-based access control middleware.
package rbac

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
)

// CapabilityCheck answers whether identity holds role. It should return nil
// when allowed and a non-nil error when denied; lookups run against the
// user store so role changes apply on the next request.
type CapabilityCheck func(ctx context.Context, identity, role string) error

// Require returns middleware allowing only identities that pass check for
// role. It must run after middleware.Auth: a missing subject means the
// request never authenticated, and authentication failure takes precedence
// over authorization, so that case is a 401 rather than a 403.
func Require(role string, check CapabilityCheck) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := middleware.SubjectFromCtx(r.Context())
			if !ok {
				response.Unauthorized(w)
				return
			}
			if err := check(r.Context(), email, role); err != nil {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
