package server

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"catalog-service/internal/config"
	"catalog-service/internal/database"
	custommiddleware "catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/service"
	"catalog-service/internal/storage"
	"catalog-service/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires the catalog API. redisClient may be nil when rate limiting is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      otelhttp.NewHandler(NewRouter(cfg, logger, db, redisClient), "catalog-service"),
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

// NewRouter builds the chi router with every catalog route mounted
func NewRouter(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) chi.Router {
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", healthHandler(db))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "Route not found")
	})

	// Uploaded assets are served from the same prefix the asset store returns
	prefix := cfg.Upload.PublicPrefix
	router.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(assetFileSystem{http.Dir(cfg.Upload.Dir)})))

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	// Initialize services
	categoryService := service.NewCategoryService(categoryRepo)
	productService := service.NewProductService(
		productRepo,
		storage.NewLocalAssetStore(cfg.Upload.Dir, cfg.Upload.PublicPrefix),
		service.NewImageURLResolver(cfg.Server.BaseURL),
	)

	// Initialize handlers
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	productHandler := transport.NewProductHandler(productService, cfg.Upload.MaxBytes, logger)
	authHandler := transport.NewAuthHandler(logger)

	var writeMiddleware []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled && redisClient != nil {
		writeMiddleware = append(writeMiddleware, custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "catalog_rate_limit",
		}, logger))
	}

	// Register routes
	categoryHandler.RegisterRoutes(router, writeMiddleware...)
	productHandler.RegisterRoutes(router, writeMiddleware...)
	authHandler.RegisterRoutes(router, custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger))

	return router
}

func healthHandler(db database.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()

		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}

		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   health["status"],
			"database": health,
		})
	}
}

// assetFileSystem hides directory listings of the upload root
type assetFileSystem struct {
	fs http.FileSystem
}

func (a assetFileSystem) Open(name string) (http.File, error) {
	if strings.HasSuffix(name, "/") {
		return nil, os.ErrNotExist
	}

	f, err := a.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}

	return f, nil
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
