package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bistro-boss-server/app/controllers"
	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/app/services"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/token"
)

type stubUserStore struct {
	users map[string]*models.User
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: map[string]*models.User{}}
	for _, u := range users {
		s.users[u.Email] = u
	}
	return s
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (s *stubUserStore) EnsureExists(_ context.Context, email, name string) error {
	if _, ok := s.users[email]; !ok {
		s.users[email] = &models.User{Email: email, Name: name, Role: models.RoleGuest}
	}
	return nil
}

func newAuthController(store *stubUserStore) *controllers.AuthController {
	return controllers.NewAuthController(services.NewAuthService(store))
}

// checkAdminRequest builds a request with the chi {email} param bound,
// matching how the handler sees it behind the router.
func checkAdminRequest(pathEmail string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/users/admin/"+pathEmail, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("email", pathEmail)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestIssueTokenReturnsVerifiableToken(t *testing.T) {
	store := newStubUserStore()
	c := newAuthController(store)

	req := httptest.NewRequest(http.MethodPost, "/jwt",
		strings.NewReader(`{"email": "amina@example.com", "name": "Amina"}`))
	rec := httptest.NewRecorder()
	c.IssueToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeBody(t, rec)["token"].(string)
	claims, err := token.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "amina@example.com", claims.Email)

	// First sign-in creates the user as a guest.
	u, err := store.FindByEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, u.Role)
}

func TestIssueTokenRequiresEmail(t *testing.T) {
	c := newAuthController(newStubUserStore())

	for _, body := range []string{`{}`, `{"name": "Nameless"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(body))
		rec := httptest.NewRecorder()
		c.IssueToken(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestCheckAdminRequiresAuthentication(t *testing.T) {
	c := newAuthController(newStubUserStore())

	rec := httptest.NewRecorder()
	c.CheckAdmin(rec, checkAdminRequest("amina@example.com"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckAdminForbidsAskingAboutOthers(t *testing.T) {
	// Even an admin may only ask about itself.
	store := newStubUserStore(&models.User{Email: "root@example.com", Role: models.RoleAdmin})
	c := newAuthController(store)

	req := authed(checkAdminRequest("amina@example.com"), "root@example.com")
	rec := httptest.NewRecorder()
	c.CheckAdmin(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheckAdminReportsRole(t *testing.T) {
	store := newStubUserStore(
		&models.User{Email: "root@example.com", Role: models.RoleAdmin},
		&models.User{Email: "amina@example.com", Role: models.RoleGuest},
	)
	c := newAuthController(store)

	tests := []struct {
		email string
		want  bool
	}{
		{"root@example.com", true},
		{"amina@example.com", false},
	}
	for _, tc := range tests {
		req := authed(checkAdminRequest(tc.email), tc.email)
		rec := httptest.NewRecorder()
		c.CheckAdmin(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.want, decodeBody(t, rec)["admin"], tc.email)
	}
}
