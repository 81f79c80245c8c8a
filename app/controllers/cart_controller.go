package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/middleware"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
)

type CartController struct {
	cart *repositories.CartRepository
}

func NewCartController(cart *repositories.CartRepository) *CartController {
	return &CartController{cart: cart}
}

// List handles GET /cart?userEmail=. The email must match the token
// subject; a caller asking for someone else's cart gets a 403.
func (c *CartController) List(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	email := r.URL.Query().Get("userEmail")
	if email == "" {
		email = subject
	}
	if email != subject {
		response.Forbidden(w)
		return
	}

	items, err := c.cart.FindByOwner(r.Context(), email)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load cart")
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}
	response.Success(w, items)
}

// Create handles POST /cart. The item is always stored against the token
// subject regardless of what the body claims.
func (c *CartController) Create(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	var item models.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.DishID.IsZero() {
		response.Error(w, http.StatusBadRequest, "dishId is required")
		return
	}
	item.ID = primitive.NilObjectID
	item.UserEmail = subject
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	if err := c.cart.Create(r.Context(), &item); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not add to cart")
		return
	}
	response.Created(w, item)
}

// Delete handles DELETE /cart/{id}. Only the item's owner may remove it;
// the delete filter is scoped to the subject so a foreign id reads as
// not found rather than leaking ownership.
func (c *CartController) Delete(w http.ResponseWriter, r *http.Request) {
	subject, ok := middleware.SubjectFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	if err := c.cart.DeleteOwned(r.Context(), id, subject); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not remove cart item")
		return
	}
	response.Success(w, map[string]bool{"deleted": true})
}
