package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/token"
)

func authHandler() (http.Handler, *string) {
	var seen string
	h := middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subject, ok := middleware.SubjectFromCtx(r.Context()); ok {
			seen = subject
		}
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	h, _ := authHandler()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message": "unauthorized access"}`, rec.Body.String())
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	h, _ := authHandler()

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInjectsSubject(t *testing.T) {
	h, seen := authHandler()

	tok, err := token.Issue("amina@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "amina@example.com", *seen)
}
