package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/token"
)

// subjectKey is the unexported context key for the authenticated email.
type subjectKey struct{}

// Auth verifies the Bearer token on the Authorization header and stores the
// subject email in the request context. Missing or invalid tokens are
// rejected with 401 before any downstream handler runs.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			response.Unauthorized(w)
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		claims, err := token.Verify(raw)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey{}, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromCtx returns the authenticated email stored by Auth.
func SubjectFromCtx(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(subjectKey{}).(string)
	return email, ok && email != ""
}

// WithSubject stores an authenticated email in ctx. Intended for tests that
// exercise handlers without running the Auth middleware.
func WithSubject(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, subjectKey{}, email)
}
