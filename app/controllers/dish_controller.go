package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/bistro-boss-server/app/models"
	"github.com/shashiranjanraj/bistro-boss-server/app/repositories"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/cache"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/response"
	"github.com/shashiranjanraj/bistro-boss-server/pkg/storage"
)

const maxImageBytes = 8 << 20 // 8 MB

const (
	menuCacheKey = "dishes:all"
	menuCacheTTL = time.Minute
)

type DishController struct {
	dishes *repositories.DishRepository
}

func NewDishController(dishes *repositories.DishRepository) *DishController {
	return &DishController{dishes: dishes}
}

// List handles GET /dishes with an optional ?category= filter. The full,
// unfiltered menu is the hot path and is served from cache when possible.
func (c *DishController) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	if category == "" {
		var cached []models.Dish
		if cache.Get(r.Context(), menuCacheKey, &cached) {
			response.Success(w, cached)
			return
		}
	}

	dishes, err := c.dishes.All(r.Context(), category)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not load dishes")
		return
	}
	if dishes == nil {
		dishes = []models.Dish{}
	}

	if category == "" {
		_ = cache.Set(r.Context(), menuCacheKey, dishes, menuCacheTTL)
	}
	response.Success(w, dishes)
}

// Show handles GET /dishes/{id}.
func (c *DishController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	dish, err := c.dishes.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not load dish")
		return
	}
	response.Success(w, dish)
}

// Create handles POST /dishes (admin only).
func (c *DishController) Create(w http.ResponseWriter, r *http.Request) {
	var dish models.Dish
	if err := json.NewDecoder(r.Body).Decode(&dish); err != nil || dish.Name == "" {
		response.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	dish.ID = primitive.NilObjectID

	if err := c.dishes.Create(r.Context(), &dish); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not create dish")
		return
	}
	_ = cache.Del(r.Context(), menuCacheKey)
	response.Created(w, dish)
}

// Update handles PATCH /dishes/{id} (admin only).
func (c *DishController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	var dish models.Dish
	if err := json.NewDecoder(r.Body).Decode(&dish); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	if err := c.dishes.Update(r.Context(), id, &dish); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not update dish")
		return
	}
	_ = cache.Del(r.Context(), menuCacheKey)
	response.Success(w, map[string]bool{"updated": true})
}

// Delete handles DELETE /dishes/{id} (admin only).
func (c *DishController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	if err := c.dishes.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not delete dish")
		return
	}
	_ = cache.Del(r.Context(), menuCacheKey)
	response.Success(w, map[string]bool{"deleted": true})
}

// UploadImage handles POST /dishes/{id}/image (admin only): stores the
// multipart "image" file on the configured disk and saves its public URL
// on the dish record.
func (c *DishController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.NotFound(w)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "could not read upload")
		return
	}

	path := fmt.Sprintf("dishes/%s%s", id.Hex(), filepath.Ext(header.Filename))
	if err := storage.Put(path, data); err != nil {
		response.Error(w, http.StatusInternalServerError, "could not store image")
		return
	}

	url := storage.URL(path)
	if err := c.dishes.SetImage(r.Context(), id, url); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w)
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not save image")
		return
	}
	_ = cache.Del(r.Context(), menuCacheKey)

	response.Success(w, map[string]string{"image": url})
}
