package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/bistro-boss-server/app/services"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// IssueToken handles POST /jwt. The client-side identity provider has
// already authenticated the user; this mints the session token and creates
// the user record on first sign-in.
func (c *AuthController) IssueToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		response.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	tok, err := c.service.SignIn(r.Context(), body.Email, body.Name)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	response.Success(w, map[string]string{"token": tok})
}

// CheckAdmin handles GET /users/admin/{email}. A caller may only ask about
// itself: a path email that differs from the token subject is 403
// regardless of either party's actual role.
func (c *AuthController) CheckAdmin(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	email := chi.URLParam(r, "email")
	if email != subject {
		response.Forbidden(w)
		return
	}

	admin, err := c.service.IsAdmin(r.Context(), email)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	response.Success(w, map[string]bool{"admin": admin})
}
