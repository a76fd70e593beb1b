package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog-service/internal/middleware"
	"catalog-service/internal/service"
	"catalog-service/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:5000"

type testAPI struct {
	router    http.Handler
	catalog   *memoryCatalog
	uploadDir string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	catalog := newMemoryCatalog()
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	logger := zap.NewNop()

	categorySvc := service.NewCategoryService(memoryCategoryRepository{catalog})
	productSvc := service.NewProductService(
		memoryProductRepository{catalog},
		storage.NewLocalAssetStore(uploadDir, "/uploads"),
		service.NewImageURLResolver(testBaseURL),
	)

	r := chi.NewRouter()
	r.Use(middleware.ErrorHandlingMiddleware(logger))
	NewCategoryHandler(categorySvc, logger).RegisterRoutes(r)
	NewProductHandler(productSvc, 1<<20, logger).RegisterRoutes(r)
	NewAuthHandler(logger).RegisterRoutes(r, middleware.AuthMiddleware("secret", logger))

	return &testAPI{router: r, catalog: catalog, uploadDir: uploadDir}
}

func (a *testAPI) do(t *testing.T, method, path string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	return w, decoded
}

func (a *testAPI) doJSON(t *testing.T, method, path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return a.do(t, method, path, body, "application/json")
}

// createCategory creates a category through the API and returns its id
func (a *testAPI) createCategory(t *testing.T, name string) string {
	t.Helper()
	w, body := a.doJSON(t, http.MethodPost, "/api/categories", map[string]string{"name": name})
	require.Equal(t, http.StatusOK, w.Code, "body: %v", body)
	return result(t, body)["id"].(string)
}

func result(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	r, ok := body["result"].(map[string]interface{})
	require.True(t, ok, "result is not an object: %v", body)
	return r
}

func results(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	r, ok := body["result"].([]interface{})
	require.True(t, ok, "result is not a list: %v", body)
	return r
}

type filePart struct {
	field       string
	filename    string
	contentType string
	content     string
}

func multipartBody(t *testing.T, fields map[string]string, file *filePart) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.filename+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, strings.NewReader(file.content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func uploadedFiles(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return entries
}
