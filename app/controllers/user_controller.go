package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
)

type UserController struct {
	users *repositories.UserRepository
}

func NewUserController(users *repositories.UserRepository) *UserController {
	return &UserController{users: users}
}

// List handles GET /users (admin only).
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.All(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.Success(w, users)
}

// Promote handles PATCH /users/admin/{id} (admin only): grants the admin
// role to the given user.
func (c *UserController) Promote(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	if err := c.users.Promote(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not promote user")
		return
	}
	response.Success(w, map[string]bool{"promoted": true})
}

// Delete handles DELETE /users/{id} (admin only).
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	if err := c.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not delete user")
		return
	}
	response.Success(w, map[string]bool{"deleted": true})
}
