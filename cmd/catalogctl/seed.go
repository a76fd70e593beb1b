package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"catalog-service/internal/domain"
	"catalog-service/internal/service"

	"go.uber.org/zap"
)

//go:embed sample_catalog.json
var sampleCatalog []byte

type seedCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// seedProduct references its category by name
type seedProduct struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"imageURL"`
}

type seedCatalog struct {
	Categories []seedCategory `json:"categories"`
	Products   []seedProduct  `json:"products"`
}

type seedResult struct {
	categoriesCreated int
	categoriesReused  int
	productsCreated   int
}

// loadSeed reads a seed file, or the embedded sample when path is empty
func loadSeed(path string) (*seedCatalog, error) {
	raw := sampleCatalog
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	var catalog seedCatalog
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	return &catalog, nil
}

// apply creates the categories, reusing existing ones with the same name, then the products.
// It stops at the first product the services reject.
func (c *seedCatalog) apply(ctx context.Context, categories service.CategoryService, products service.ProductService, log *zap.Logger) (seedResult, error) {
	var result seedResult
	ids := make(map[string]string, len(c.Categories))

	for _, sc := range c.Categories {
		created, err := categories.Create(ctx, sc.Name, sc.Description)
		switch {
		case err == nil:
			ids[sc.Name] = created.ID
			result.categoriesCreated++
			log.Info("Category created", zap.String("name", created.Name), zap.String("category_id", created.ID))
		case errors.Is(err, domain.ErrDuplicateName):
			id, lookupErr := findCategoryID(ctx, categories, sc.Name)
			if lookupErr != nil {
				return result, lookupErr
			}
			ids[sc.Name] = id
			result.categoriesReused++
			log.Info("Category exists, reusing", zap.String("name", sc.Name), zap.String("category_id", id))
		default:
			return result, fmt.Errorf("seed category %q: %w", sc.Name, err)
		}
	}

	for _, sp := range c.Products {
		categoryID, ok := ids[sp.Category]
		if !ok {
			return result, fmt.Errorf("seed product %q: unknown category %q", sp.Name, sp.Category)
		}

		input := service.ProductInput{
			Name:        sp.Name,
			Description: sp.Description,
			Price:       sp.Price.String(),
			Category:    categoryID,
		}
		if sp.ImageURL != "" {
			imageURL := sp.ImageURL
			input.ImageURL = &imageURL
		}

		created, err := products.Create(ctx, input)
		if err != nil {
			return result, fmt.Errorf("seed product %q: %w", sp.Name, err)
		}
		result.productsCreated++
		log.Info("Product created", zap.String("name", created.Name), zap.String("product_id", created.ID))
	}

	return result, nil
}

func findCategoryID(ctx context.Context, categories service.CategoryService, name string) (string, error) {
	found, err := categories.List(ctx, name)
	if err != nil {
		return "", fmt.Errorf("look up category %q: %w", name, err)
	}
	for _, c := range found {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", name, domain.ErrNotFound)
}
