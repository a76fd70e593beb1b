package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"catalog-service/internal/domain"
	"catalog-service/internal/repository"
	"catalog-service/internal/storage"

	"github.com/shopspring/decimal"
)

// MaxProductNameLength is the longest accepted product name, in characters.
const MaxProductNameLength = 200

// ImageUpload is an image file attached to a create or update request
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// ProductInput carries the raw product fields of a create or update request.
// Price is kept as text so that JSON numbers and form strings are coerced the same way.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Category    string
	// ImageURL is nil when the caller did not send the field at all.
	ImageURL *string
	Image    *ImageUpload
}

// ProductService defines the business operations on products
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	assets      storage.AssetStore
	images      ImageURLResolver
	now         func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	assets storage.AssetStore,
	images ImageURLResolver,
) ProductService {
	return &productService{
		productRepo: productRepo,
		assets:      assets,
		images:      images,
		now:         time.Now,
	}
}

// validProduct holds product fields that passed validation
type validProduct struct {
	name        string
	description string
	price       float64
	categoryID  string
}

// validateProductInput checks required fields, then the category format, then the price.
// The first failure is returned.
func validateProductInput(input ProductInput) (*validProduct, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	price := strings.TrimSpace(input.Price)
	category := strings.TrimSpace(input.Category)

	if category == "" {
		return nil, domain.NewValidationError("category", "Category is required")
	}
	if name == "" || description == "" || price == "" {
		return nil, domain.NewValidationError(missingField(name, description), "Name, description, and price are required")
	}
	if !domain.IsValidID(category) {
		return nil, domain.NewValidationError("category", "Invalid category ID")
	}

	amount, ok := parseAmount(price)
	if !ok {
		return nil, domain.NewValidationError("price", "Price must be a number")
	}
	if amount.IsNegative() {
		return nil, domain.NewValidationError("price", "Price must be greater than or equal to 0")
	}

	if utf8.RuneCountInString(name) > MaxProductNameLength {
		return nil, domain.NewValidationError("name", fmt.Sprintf("Name must be at most %d characters", MaxProductNameLength))
	}

	if input.Image != nil && !strings.HasPrefix(strings.ToLower(input.Image.ContentType), "image/") {
		return nil, domain.NewValidationError("image", "Only image files are allowed")
	}

	return &validProduct{
		name:        name,
		description: description,
		price:       amount.InexactFloat64(),
		categoryID:  domain.NormalizeID(category),
	}, nil
}

// parseAmount parses decimal text. Values outside the float64 range are
// rejected along with non-numeric text.
func parseAmount(raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	if math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero, false
	}
	return d, true
}

func missingField(name, description string) string {
	switch {
	case name == "":
		return "name"
	case description == "":
		return "description"
	default:
		return "price"
	}
}

// explicitImageURL returns the caller supplied image URL in its storable form.
// ok is false when no usable value was sent.
func (s *productService) explicitImageURL(input ProductInput) (value string, ok bool, err error) {
	if input.ImageURL == nil {
		return "", false, nil
	}
	raw := strings.TrimSpace(*input.ImageURL)
	if raw == "" {
		return "", false, nil
	}

	stored := s.images.Unresolve(raw)
	if strings.HasPrefix(stored, "/") && !strings.HasPrefix(stored, "//") {
		return stored, true, nil
	}

	u, parseErr := url.Parse(stored)
	if parseErr != nil || !IsAbsolute(stored) || u.Host == "" {
		return "", false, domain.NewValidationError("imageURL", "imageURL must be a valid URL")
	}
	return stored, true, nil
}

// storeImage hands the upload to the asset store, after all field validation succeeded
func (s *productService) storeImage(ctx context.Context, image *ImageUpload) (string, error) {
	path, err := s.assets.Store(ctx, image.Content, image.Filename)
	if err != nil {
		return "", fmt.Errorf("store product image: %w", err)
	}
	return path, nil
}

// Create validates the input, stores the optional image and persists the product
func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	fields, err := validateProductInput(input)
	if err != nil {
		return nil, err
	}

	var imageURL string
	if input.Image != nil {
		if imageURL, err = s.storeImage(ctx, input.Image); err != nil {
			return nil, err
		}
	} else if imageURL, _, err = s.explicitImageURL(input); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &domain.Product{
		ID:          domain.NewID(),
		Name:        fields.name,
		Description: fields.description,
		Price:       fields.price,
		CategoryID:  fields.categoryID,
		ImageURL:    imageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, product.ID)
}

// Update replaces every product field. An uploaded image wins over imageURL;
// without either the stored image is kept.
func (s *productService) Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error) {
	if !domain.IsValidID(id) {
		return nil, repository.ErrProductNotFound
	}
	id = domain.NormalizeID(id)

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := validateProductInput(input)
	if err != nil {
		return nil, err
	}

	imageURL := existing.ImageURL
	if input.Image != nil {
		if imageURL, err = s.storeImage(ctx, input.Image); err != nil {
			return nil, err
		}
	} else {
		explicit, supplied, err := s.explicitImageURL(input)
		if err != nil {
			return nil, err
		}
		if supplied {
			imageURL = explicit
		}
	}

	existing.Name = fields.name
	existing.Description = fields.description
	existing.Price = fields.price
	existing.CategoryID = fields.categoryID
	existing.ImageURL = imageURL
	existing.UpdatedAt = s.now().UTC()

	if err := s.productRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id string) error {
	if !domain.IsValidID(id) {
		return repository.ErrProductNotFound
	}
	return s.productRepo.Delete(ctx, domain.NormalizeID(id))
}

// GetByID returns the product with its category name and an absolute image URL
func (s *productService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !domain.IsValidID(id) {
		return nil, repository.ErrProductNotFound
	}

	product, err := s.productRepo.FindByID(ctx, domain.NormalizeID(id))
	if err != nil {
		return nil, err
	}

	return s.present(product), nil
}

// Search returns matching products with absolute image URLs
func (s *productService) Search(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		result = append(result, s.present(p))
	}
	return result, nil
}

// present copies p with its image URL resolved. The stored record is never modified.
func (s *productService) present(p *domain.Product) *domain.Product {
	out := *p
	out.ImageURL = s.images.Resolve(p.ImageURL)
	return &out
}

// ParseProductFilter builds a search filter from raw query values.
// Malformed category identifiers and price bounds are ignored rather than rejected.
func ParseProductFilter(query, category, minPrice, maxPrice string) domain.ProductFilter {
	filter := domain.ProductFilter{Query: strings.TrimSpace(query)}

	if category = strings.TrimSpace(category); domain.IsValidID(category) {
		filter.CategoryID = domain.NormalizeID(category)
	}

	filter.MinPrice = parseBound(minPrice)
	filter.MaxPrice = parseBound(maxPrice)

	return filter
}

func parseBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, ok := parseAmount(raw)
	if !ok {
		return nil
	}
	v := d.InexactFloat64()
	return &v
}
