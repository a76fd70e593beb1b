package transport

import (
	"context"
	"sort"
	"strings"
	"sync"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"
)

// memoryCatalog is an in-memory stand-in for both repositories
type memoryCatalog struct {
	mu         sync.Mutex
	categories map[string]domain.Category
	products   map[string]domain.Product
}

func newMemoryCatalog() *memoryCatalog {
	return &memoryCatalog{
		categories: make(map[string]domain.Category),
		products:   make(map[string]domain.Product),
	}
}

type memoryCategoryRepository struct{ *memoryCatalog }

type memoryProductRepository struct{ *memoryCatalog }

func (m memoryCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = *category
	return nil
}

func (m memoryCategoryRepository) List(ctx context.Context, query string) ([]*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Category{}
	for _, c := range m.categories {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			copied := c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m memoryCategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &c, nil
}

func (m memoryCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
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
	m.categories[category.ID] = *category
	return nil
}

func (m memoryCategoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m memoryProductRepository) populate(p domain.Product) *domain.Product {
	p.CategoryName = domain.UncategorizedName
	if c, ok := m.categories[p.CategoryID]; ok {
		p.CategoryName = c.Name
	}
	return &p
}

func (m memoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = *product
	return nil
}

func (m memoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = *product
	return nil
}

func (m memoryProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m memoryProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return m.populate(p), nil
}

func (m memoryProductRepository) Search(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Product{}
	for _, p := range m.products {
		p := p
		if filter.Matches(&p) {
			result = append(result, m.populate(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}
