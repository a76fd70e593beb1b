package transport

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart body kept in memory; the rest spills to temp files
const multipartMemory = 8 << 20

// productRequest is the JSON body of a product create or update.
// Price accepts a JSON number or a numeric string.
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
	ImageURL    *string         `json:"imageURL"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler. maxUploadBytes bounds multipart bodies.
func NewProductHandler(productService service.ProductService, maxUploadBytes int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. writeMiddleware wraps the mutating routes only.
func (h *ProductHandler) RegisterRoutes(r chi.Router, writeMiddleware ...func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
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

// List searches products by name, category and price range
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.ParseProductFilter(q.Get("q"), q.Get("category"), q.Get("minPrice"), q.Get("maxPrice"))

	products, err := h.productService.Search(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.logger, err, "Product")
		return
	}

	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}

	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{Message: "success", Result: result})
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.productService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, h.logger, err, "Product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{Message: "success", Result: toProductResponse(product)})
}

// Create handles product creation from a JSON or multipart body
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := h.readProductInput(w, r)
	if err != nil {
		h.respondBodyError(w, err)
		return
	}
	defer cleanup()

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, h.logger, err, "Product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{Message: "Product created", Result: toProductResponse(product)})
}

// Update replaces the product fields from a JSON or multipart body
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := h.readProductInput(w, r)
	if err != nil {
		h.respondBodyError(w, err)
		return
	}
	defer cleanup()

	product, err := h.productService.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		respondError(w, r, h.logger, err, "Product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, ResultResponse{Message: "Product updated", Result: toProductResponse(product)})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.productService.Delete(r.Context(), id); err != nil {
		respondError(w, r, h.logger, err, "Product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted"})
}

func (h *ProductHandler) respondBodyError(w http.ResponseWriter, err error) {
	h.logger.Debug("Failed to read product body", zap.Error(err))

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
}

// readProductInput parses the body according to its content type.
// The returned cleanup releases multipart temp files and must be called once the input is consumed.
func (h *ProductHandler) readProductInput(w http.ResponseWriter, r *http.Request) (service.ProductInput, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.readMultipart(w, r)
	}

	input, err := readJSONProduct(r.Body)
	return input, func() {}, err
}

func readJSONProduct(body io.Reader) (service.ProductInput, error) {
	var req productRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return service.ProductInput{}, err
	}

	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       priceText(req.Price),
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}, nil
}

// priceText renders a raw JSON price as text for numeric coercion.
// Strings are unquoted, null and absent values become empty.
func priceText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}

func (h *ProductHandler) readMultipart(w http.ResponseWriter, r *http.Request) (service.ProductInput, func(), error) {
	noop := func() {}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return service.ProductInput{}, noop, err
	}

	form := r.MultipartForm
	input := service.ProductInput{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Price:       formValue(form, "price"),
		Category:    formValue(form, "category"),
	}
	if values, ok := form.Value["imageURL"]; ok && len(values) > 0 {
		imageURL := values[0]
		input.ImageURL = &imageURL
	}

	var file multipart.File
	if headers := form.File["image"]; len(headers) > 0 {
		header := headers[0]
		f, err := header.Open()
		if err != nil {
			_ = form.RemoveAll()
			return service.ProductInput{}, noop, err
		}
		file = f
		input.Image = &service.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     f,
		}
	}

	cleanup := func() {
		if file != nil {
			_ = file.Close()
		}
		_ = form.RemoveAll()
	}
	return input, cleanup, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}
