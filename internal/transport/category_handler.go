package transport

import (
	"net/http"

	"catalog-service/internal/domain"
	"catalog-service/internal/middleware"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

// UpdateCategoryRequest carries the fields to change. Absent fields are kept.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description"`
}

// UpdatedCategoryResponse is the body of a successful category update
type UpdatedCategoryResponse struct {
	Message string           `json:"message"`
	Updated CategoryResponse `json:"updated"`
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// RegisterRoutes registers all category routes. writeMiddleware wraps the mutating routes only.
func (h *CategoryHandler) RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(writeMiddleware...)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns categories whose name contains the q parameter
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, h.logger, err, "Category")
		return
	}

	result := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		result = append(result, toCategoryResponse(c))
	}

	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{Message: "success", Result: result})
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.categoryService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err, "Category")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{Message: "success", Result: toCategoryResponse(category)})
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, "Validation failed", validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categoryService.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		respondError(w, r, h.logger, err, "Category")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID))
	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{
		Message: "Category created successfully",
		Result:  toCategoryResponse(category),
	})
}

// Update merges the supplied fields onto the category
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, "Validation failed", validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.categoryService.Update(r.Context(), chi.URLParam(r, "id"), domain.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Category")
		return
	}

	h.logger.Info("Category updated", zap.String("category_id", category.ID))
	middleware.RespondWithJSON(w, http.StatusOK, UpdatedCategoryResponse{
		Message: "Category updated successfully",
		Updated: toCategoryResponse(category),
	})
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, "Category")
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Category deleted"})
}
