package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"
)

// CategoryService defines the business operations on categories
type CategoryService interface {
	Create(ctx context.Context, name, description string) (*domain.Category, error)
	List(ctx context.Context, query string) ([]*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	now          func() time.Time
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		now:          time.Now,
	}
}

// Create persists a new category. Duplicate names are rejected by the repository.
func (s *categoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "Category name is required")
	}

	category := &domain.Category{
		ID:          domain.NewID(),
		Name:        name,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) List(ctx context.Context, query string) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx, query)
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if !domain.IsValidID(id) {
		return nil, repository.ErrCategoryNotFound
	}
	return s.categoryRepo.FindByID(ctx, domain.NormalizeID(id))
}

// Update merges the supplied fields onto the stored category
func (s *categoryService) Update(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "Category name cannot be empty")
		}
		category.Name = name
	}
	if patch.Description != nil {
		category.Description = *patch.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category %s: %w", category.ID, err)
	}

	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if !domain.IsValidID(id) {
		return repository.ErrCategoryNotFound
	}
	return s.categoryRepo.Delete(ctx, domain.NormalizeID(id))
}
