package controllers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
)

type ReviewController struct {
	reviews *repositories.ReviewRepository
}

func NewReviewController(reviews *repositories.ReviewRepository) *ReviewController {
	return &ReviewController{reviews: reviews}
}

// List handles GET /reviews.
func (c *ReviewController) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := c.reviews.All(r.Context())
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load reviews")
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	response.Success(w, reviews)
}

// Create handles POST /reviews.
func (c *ReviewController) Create(w http.ResponseWriter, r *http.Request) {
	var review models.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil || review.Details == "" {
		response.Error(w, http.StatusBadRequest, "details is required")
		return
	}
	review.ID = primitive.NilObjectID

	if err := c.reviews.Create(r.Context(), &review); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not create review")
		return
	}
	response.Created(w, review)
}
