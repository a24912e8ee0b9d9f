package server

import (
	"fmt"
	"net/http"
	"time"

	"storefront/internal/config"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/service"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	storage *Storage
	redis   *redis.Client
}

// NewServer wires services and handlers over storage. redisClient may be nil,
// in which case requests are not rate limited.
func NewServer(cfg *config.Config, logger *zap.Logger, storage *Storage, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack(cfg.Server.RequestTimeout)...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))

	if redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "storefront:ratelimit",
		}, logger))
	}

	// Initialize services
	ledger := service.NewStockLedger(storage.Products, cfg.Inventory.AllowNegativeStock, logger)
	catalogService := service.NewCatalogService(storage.Products, ledger, logger)
	orderService := service.NewOrderService(storage.Products, storage.Orders, ledger, logger)

	// Catalog mutations need an admin token once a secret is configured
	var adminOnly func(http.Handler) http.Handler
	if cfg.JWT.Secret != "" {
		authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
		requireAdmin := custommiddleware.RequireAdmin(logger)
		adminOnly = func(next http.Handler) http.Handler {
			return authMiddleware(requireAdmin(next))
		}
	} else {
		logger.Warn("JWT_SECRET is not set, catalog mutations are unauthenticated")
	}

	// Register routes
	transport.NewHealthHandler(storage, storage.Backend, logger).RegisterRoutes(router)
	transport.NewProductHandler(catalogService, logger).RegisterRoutes(router, adminOnly)
	transport.NewOrderHandler(orderService, logger).RegisterRoutes(router)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		},
		config:  cfg,
		logger:  logger,
		storage: storage,
		redis:   redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.storage.Close(); err != nil {
		s.logger.Error("Failed to close storage", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
