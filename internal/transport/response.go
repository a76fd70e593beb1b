package transport

import (
	"net/http"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/middleware"

	"go.uber.org/zap"
)

// MessageResponse is the body of operations that return no entity
type MessageResponse struct {
	Message string `json:"message"`
}

// ResultResponse wraps a single entity or a list
type ResultResponse struct {
	Message string      `json:"message"`
	Result  interface{} `json:"result"`
}

// CategoryResponse represents category data returned to clients
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CategoryRef is the populated category of a product
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductResponse represents product data returned to clients
type ProductResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    CategoryRef `json:"category"`
	ImageURL    string      `json:"imageURL"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category: CategoryRef{
			ID:   p.CategoryID,
			Name: p.CategoryName,
		},
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// respondError writes the mapped error response and logs it by severity
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error, subject string) {
	status := middleware.RespondWithDomainError(w, err, subject)

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
		return
	}
	logger.Debug("Request rejected", fields...)
}
