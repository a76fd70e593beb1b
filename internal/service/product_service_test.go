package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"catalog-service/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:5000"

type fixture struct {
	categories *mockCategoryRepository
	products   *mockProductRepository
	assets     *mockAssetStore
	categorySv CategoryService
	productSv  ProductService
}

func newFixture() *fixture {
	categories := newMockCategoryRepository()
	products := newMockProductRepository(categories)
	assets := &mockAssetStore{}
	return &fixture{
		categories: categories,
		products:   products,
		assets:     assets,
		categorySv: NewCategoryService(categories),
		productSv:  NewProductService(products, assets, NewImageURLResolver(testBaseURL)),
	}
}

func strPtr(s string) *string { return &s }

func validInput(categoryID string) ProductInput {
	return ProductInput{
		Name:        "Phone",
		Description: "X",
		Price:       "499.99",
		Category:    categoryID,
	}
}

func imageUpload(name, contentType string) *ImageUpload {
	return &ImageUpload{Filename: name, ContentType: contentType, Content: strings.NewReader("bytes")}
}

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, field, ve.Field)
}

func TestCreateProductPopulatesCategoryAndEmptyImage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	electronics, err := f.categorySv.Create(ctx, "Electronics", "")
	require.NoError(t, err)

	product, err := f.productSv.Create(ctx, validInput(electronics.ID))
	require.NoError(t, err)

	assert.True(t, domain.IsValidID(product.ID))
	assert.Equal(t, "Phone", product.Name)
	assert.Equal(t, 499.99, product.Price)
	assert.Equal(t, electronics.ID, product.CategoryID)
	assert.Equal(t, "Electronics", product.CategoryName)
	assert.Equal(t, "", product.ImageURL)
	assert.False(t, product.CreatedAt.IsZero())
}

func TestCreateProductValidationOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	validID := domain.NewID()

	cases := []struct {
		name  string
		input ProductInput
		field string
	}{
		{"missing category", ProductInput{Name: "a", Description: "b", Price: "1"}, "category"},
		{"missing name before bad category", ProductInput{Description: "b", Price: "1", Category: "bad"}, "name"},
		{"missing description", ProductInput{Name: "a", Price: "1", Category: validID}, "description"},
		{"missing price", ProductInput{Name: "a", Description: "b", Category: validID}, "price"},
		{"blank name", ProductInput{Name: "   ", Description: "b", Price: "1", Category: validID}, "name"},
		{"malformed category before bad price", ProductInput{Name: "a", Description: "b", Price: "abc", Category: "123"}, "category"},
		{"non numeric price", ProductInput{Name: "a", Description: "b", Price: "abc", Category: validID}, "price"},
		{"NaN price", ProductInput{Name: "a", Description: "b", Price: "NaN", Category: validID}, "price"},
		{"negative price", ProductInput{Name: "a", Description: "b", Price: "-1", Category: validID}, "price"},
		{"price beyond float range", ProductInput{Name: "a", Description: "b", Price: "1e400", Category: validID}, "price"},
		{"negative price beyond float range", ProductInput{Name: "a", Description: "b", Price: "-1e400", Category: validID}, "price"},
		{"name too long", ProductInput{Name: strings.Repeat("n", MaxProductNameLength+1), Description: "b", Price: "1", Category: validID}, "name"},
		{"non image upload", ProductInput{Name: "a", Description: "b", Price: "1", Category: validID, Image: imageUpload("doc.pdf", "application/pdf")}, "image"},
		{"relative garbage image url", ProductInput{Name: "a", Description: "b", Price: "1", Category: validID, ImageURL: strPtr("not a url")}, "imageURL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.productSv.Create(ctx, tc.input)
			requireValidationField(t, err, tc.field)
		})
	}

	assert.Empty(t, f.assets.stored, "no file may be written when validation fails")
	assert.Empty(t, f.products.products, "no product may be persisted when validation fails")
}

func TestCreateProductWithImageResolvesURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := validInput(domain.NewID())
	input.ImageURL = strPtr("https://cdn.example.com/ignored.png")
	input.Image = imageUpload("Photo.JPG", "image/jpeg")

	product, err := f.productSv.Create(ctx, input)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(product.ImageURL, testBaseURL+"/uploads/"))
	assert.True(t, strings.HasSuffix(product.ImageURL, ".jpg"))

	stored := f.products.stored(product.ID)
	assert.Equal(t, f.assets.stored[0], stored.ImageURL, "persisted value stays relative")

	again, err := f.productSv.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ImageURL, again.ImageURL)
}

func TestCreateProductExternalImageURLKeptAsIs(t *testing.T) {
	f := newFixture()

	input := validInput(domain.NewID())
	input.ImageURL = strPtr("http://images.example.com/p.png")

	product, err := f.productSv.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "http://images.example.com/p.png", product.ImageURL)
	assert.Equal(t, "http://images.example.com/p.png", f.products.stored(product.ID).ImageURL)
}

func TestCreateProductStorageFailurePersistsNothing(t *testing.T) {
	f := newFixture()
	f.assets.err = &domain.StorageError{Op: "write", Path: "x", Err: errors.New("disk full")}

	input := validInput(domain.NewID())
	input.Image = imageUpload("p.png", "image/png")

	_, err := f.productSv.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, domain.IsStorageError(err))
	assert.Empty(t, f.products.products)
}

func TestUpdateProductPreservesImageWhenNotSupplied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := validInput(domain.NewID())
	input.Image = imageUpload("p.png", "image/png")
	created, err := f.productSv.Create(ctx, input)
	require.NoError(t, err)

	update := validInput(domain.NewID())
	update.Name = "Phone 2"
	update.Price = "10"
	updated, err := f.productSv.Update(ctx, created.ID, update)
	require.NoError(t, err)

	assert.Equal(t, created.ImageURL, updated.ImageURL)
	assert.Equal(t, "Phone 2", updated.Name)
	assert.Equal(t, 10.0, updated.Price)

	t.Run("empty imageURL also preserves", func(t *testing.T) {
		update.ImageURL = strPtr("")
		again, err := f.productSv.Update(ctx, created.ID, update)
		require.NoError(t, err)
		assert.Equal(t, created.ImageURL, again.ImageURL)
	})

	t.Run("resolved URL echoed back is stored relative", func(t *testing.T) {
		update.ImageURL = strPtr(created.ImageURL)
		_, err := f.productSv.Update(ctx, created.ID, update)
		require.NoError(t, err)
		assert.Equal(t, f.assets.stored[0], f.products.stored(created.ID).ImageURL)
	})
}

func TestUpdateProductNewImageReplacesURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := validInput(domain.NewID())
	input.Image = imageUpload("first.png", "image/png")
	created, err := f.productSv.Create(ctx, input)
	require.NoError(t, err)

	update := validInput(domain.NewID())
	update.Image = imageUpload("second.webp", "image/webp")
	updated, err := f.productSv.Update(ctx, created.ID, update)
	require.NoError(t, err)

	assert.NotEqual(t, created.ImageURL, updated.ImageURL)
	assert.True(t, strings.HasSuffix(updated.ImageURL, ".webp"))
	assert.Len(t, f.assets.stored, 2)
}

func TestUploadedImageWinsOverInvalidImageURL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	input := validInput(domain.NewID())
	input.ImageURL = strPtr("not a url")
	input.Image = imageUpload("a.png", "image/png")
	created, err := f.productSv.Create(ctx, input)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(created.ImageURL, ".png"))

	update := validInput(domain.NewID())
	update.ImageURL = strPtr("also not a url")
	update.Image = imageUpload("b.gif", "image/gif")
	updated, err := f.productSv.Update(ctx, created.ID, update)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(updated.ImageURL, ".gif"))
	assert.Len(t, f.assets.stored, 2)
}

func TestUpdateProductNotFoundBeforeValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.productSv.Update(ctx, domain.NewID(), ProductInput{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.productSv.Update(ctx, "not-an-id", validInput(domain.NewID()))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProductRequiresAllFields(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.productSv.Create(ctx, validInput(domain.NewID()))
	require.NoError(t, err)

	_, err = f.productSv.Update(ctx, created.ID, ProductInput{Name: "Only name", Category: created.CategoryID})
	requireValidationField(t, err, "description")
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.productSv.Create(ctx, validInput(domain.NewID()))
	require.NoError(t, err)

	require.NoError(t, f.productSv.Delete(ctx, created.ID))
	assert.ErrorIs(t, f.productSv.Delete(ctx, created.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.productSv.Delete(ctx, "xyz"), domain.ErrNotFound)

	_, err = f.productSv.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDanglingCategoryResolvesToUncategorized(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	category, err := f.categorySv.Create(ctx, "Temporary", "")
	require.NoError(t, err)
	product, err := f.productSv.Create(ctx, validInput(category.ID))
	require.NoError(t, err)
	require.Equal(t, "Temporary", product.CategoryName)

	require.NoError(t, f.categorySv.Delete(ctx, category.ID))

	again, err := f.productSv.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, again.CategoryID)
	assert.Equal(t, domain.UncategorizedName, again.CategoryName)
}

func TestParseProductFilter(t *testing.T) {
	id := domain.NewID()

	f := ParseProductFilter(" pho ", id, "100", "1000")
	assert.Equal(t, "pho", f.Query)
	assert.Equal(t, id, f.CategoryID)
	require.NotNil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, 100.0, *f.MinPrice)
	assert.Equal(t, 1000.0, *f.MaxPrice)

	ignored := ParseProductFilter("", "wrong-format", "abc", "1e400")
	assert.Empty(t, ignored.CategoryID)
	assert.Nil(t, ignored.MinPrice)
	assert.Nil(t, ignored.MaxPrice)
}

func TestSearchScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	electronics, err := f.categorySv.Create(ctx, "Electronics", "")
	require.NoError(t, err)
	books, err := f.categorySv.Create(ctx, "Books", "")
	require.NoError(t, err)

	phone, err := f.productSv.Create(ctx, validInput(electronics.ID))
	require.NoError(t, err)

	cheap := validInput(electronics.ID)
	cheap.Name, cheap.Price = "Cable", "5"
	_, err = f.productSv.Create(ctx, cheap)
	require.NoError(t, err)

	novel := validInput(books.ID)
	novel.Name, novel.Price = "Novel", "200"
	_, err = f.productSv.Create(ctx, novel)
	require.NoError(t, err)

	result, err := f.productSv.Search(ctx, ParseProductFilter("", electronics.ID, "100", "1000"))
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, phone.ID, result[0].ID)
	assert.Equal(t, "Electronics", result[0].CategoryName)
	assert.Equal(t, "", result[0].ImageURL)

	all, err := f.productSv.Search(ctx, ParseProductFilter("", "bogus", "", ""))
	require.NoError(t, err)
	assert.Len(t, all, 3, "malformed category filter is ignored")
}

// Products returned by search honour inclusive price bounds
func TestProperty_SearchHonoursPriceBounds(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a product is returned iff its price lies within the bounds", prop.ForAll(
		func(price, lo, hi int) bool {
			f := newFixture()
			ctx := context.Background()

			input := validInput(domain.NewID())
			input.Price = fmt.Sprintf("%d.25", price)
			created, err := f.productSv.Create(ctx, input)
			if err != nil {
				t.Logf("FAIL: create: %v", err)
				return false
			}

			result, err := f.productSv.Search(ctx, ParseProductFilter("", "", fmt.Sprint(lo), fmt.Sprint(hi)))
			if err != nil {
				return false
			}

			p := float64(price) + 0.25
			want := p >= float64(lo) && p <= float64(hi)
			got := len(result) == 1 && result[0].ID == created.ID
			return want == got && (want || len(result) == 0)
		},
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Non numeric prices never reach the repository
func TestProperty_NonNumericPriceIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("alphabetic prices produce a ValidationError", prop.ForAll(
		func(price string) bool {
			f := newFixture()
			input := validInput(domain.NewID())
			input.Price = price

			_, err := f.productSv.Create(context.Background(), input)
			var ve *domain.ValidationError
			return errors.As(err, &ve) && ve.Field == "price" && len(f.products.products) == 0
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
