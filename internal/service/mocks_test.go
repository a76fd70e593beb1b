package service

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"
)

// Mock repositories for testing
type mockCategoryRepository struct {
	mu         sync.Mutex
	categories map[string]*domain.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[string]*domain.Category),
	}
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, query string) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Category{}
	for _, c := range m.categories {
		if query == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	copied := *c
	return &copied, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	for id, c := range m.categories {
		if id != category.ID && c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	stored := *category
	m.categories[category.ID] = &stored
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

type mockProductRepository struct {
	mu         sync.Mutex
	products   map[string]*domain.Product
	categories *mockCategoryRepository
	createErr  error
}

func newMockProductRepository(categories *mockCategoryRepository) *mockProductRepository {
	return &mockProductRepository{
		products:   make(map[string]*domain.Product),
		categories: categories,
	}
}

func (m *mockProductRepository) withCategoryName(p *domain.Product) *domain.Product {
	copied := *p
	copied.CategoryName = domain.UncategorizedName
	if c, err := m.categories.FindByID(context.Background(), p.CategoryID); err == nil {
		copied.CategoryName = c.Name
	}
	return &copied
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	stored := *product
	stored.CategoryName = ""
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	p, ok := m.products[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.withCategoryName(p), nil
}

func (m *mockProductRepository) Search(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Product{}
	for _, p := range m.products {
		if filter.Matches(p) {
			result = append(result, m.withCategoryName(p))
		}
	}
	return result, nil
}

// stored returns the raw persisted record, bypassing URL resolution.
func (m *mockProductRepository) stored(id string) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id]
}

type mockAssetStore struct {
	stored []string
	err    error
}

func (m *mockAssetStore) Store(ctx context.Context, r io.Reader, originalName string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	name := "/uploads/" + strings.Repeat("a", len(m.stored)+1) + strings.ToLower(filepath.Ext(originalName))
	m.stored = append(m.stored, name)
	return name, nil
}
