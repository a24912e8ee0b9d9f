package transport

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	storage Pinger
	backend string
	logger  *zap.Logger
}

func NewHealthHandler(storage Pinger, backend string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{storage: storage, backend: backend, logger: logger}
}

func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.String("storage", h.backend), zap.Error(err))
		middleware.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Storage: h.backend})
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok", Storage: h.backend})
}
