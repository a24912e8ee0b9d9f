package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UpdateOrderRequest is the optional JSON body of PUT /order. Values in the
// body take precedence over query parameters.
type UpdateOrderRequest struct {
	OrderID string  `json:"orderId"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Status  *string `json:"status" validate:"omitempty,order_status"`
}

// CheckoutResponse is returned by PUT /checkout
type CheckoutResponse struct {
	Success        bool            `json:"success"`
	UpdatedProduct *domain.Product `json:"updatedProduct"`
	NewOrder       *domain.Order   `json:"newOrder"`
}

// OrderResponse is returned by GET /order
type OrderResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order"`
}

// UpdateOrderResponse is returned by PUT /order
type UpdateOrderResponse struct {
	Success      bool          `json:"success"`
	UpdatedOrder *domain.Order `json:"updatedOrder"`
}

// StatusResponse is returned by GET /status
type StatusResponse struct {
	Status domain.OrderStatus `json:"status"`
}

// SuccessResponse acknowledges an operation without a payload
type SuccessResponse struct {
	Success bool `json:"success"`
}

// OrderHandler handles HTTP requests for checkout and order lifecycle
type OrderHandler struct {
	orders service.OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Put("/checkout", h.Checkout)
	r.Get("/order", h.GetOrder)
	r.Put("/order", h.UpdateOrder)
	r.Delete("/order", h.DeleteOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/status", h.GetStatus)
}

// Checkout handles PUT /checkout?id=<productId>&stock=<quantity>
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	productID, err := int64Param(r, "id")
	if err != nil {
		respondWithServiceError(w, h.logger, err, "checkout")
		return
	}
	quantity, err := intParam(r, "stock")
	if err != nil {
		respondWithServiceError(w, h.logger, err, "checkout")
		return
	}

	result, err := h.orders.Checkout(r.Context(), productID, quantity)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "checkout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{
		Success:        true,
		UpdatedProduct: result.Product,
		NewOrder:       result.Order,
	})
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.FindOrderByID(r.Context(), orderIDParam(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, OrderResponse{Success: true, Order: order})
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// UpdateOrder handles PUT /order. address and status may come from the query
// string, the JSON body, or both.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := orderIDParam(r)
	var patch domain.OrderPatch

	query := r.URL.Query()
	if query.Has("address") {
		address := query.Get("address")
		patch.Address = &address
	}
	if query.Has("status") {
		status, err := domain.ParseOrderStatus(query.Get("status"))
		if err != nil {
			respondWithServiceError(w, h.logger, fmt.Errorf("%w: %w", service.ErrInvalidArgument, err), "update order")
			return
		}
		patch.Status = &status
	}

	var req UpdateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug("Order update validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}
	if req.OrderID != "" {
		orderID = req.OrderID
	}
	if req.Address != nil {
		patch.Address = req.Address
	}
	if req.Status != nil {
		status := domain.OrderStatus(*req.Status)
		patch.Status = &status
	}

	order, err := h.orders.UpdateOrder(r.Context(), orderID, patch)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, UpdateOrderResponse{Success: true, UpdatedOrder: order})
}

func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.DeleteOrder(r.Context(), orderIDParam(r)); err != nil {
		respondWithServiceError(w, h.logger, err, "delete order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *OrderHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.orders.OrderStatus(r.Context(), orderIDParam(r))
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get order status")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StatusResponse{Status: status})
}
