package transport

import (
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"go.uber.org/zap"
)

// respondWithServiceError maps a service or repository error onto the HTTP
// error envelope. Inconsistency wins over whatever step error caused it.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, service.ErrInconsistent):
		logger.Error("Operation left storage inconsistent", zap.String("operation", operation), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, service.ErrInconsistent.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrProductNotFound.Error())
	case errors.Is(err, repository.ErrOrderNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, repository.ErrOrderNotFound.Error())
	case errors.Is(err, repository.ErrProductAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrProductAlreadyExists.Error())
	case errors.Is(err, repository.ErrOrderAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrOrderAlreadyExists.Error())
	case errors.Is(err, repository.ErrInsufficientStock):
		middleware.RespondWithError(w, http.StatusConflict, repository.ErrInsufficientStock.Error())
	case errors.Is(err, repository.ErrStorageUnavailable):
		logger.Error("Storage unavailable", zap.String("operation", operation), zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, repository.ErrStorageUnavailable.Error())
	default:
		logger.Error("Unexpected error", zap.String("operation", operation), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to "+operation)
	}
}
