package transport

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	ID          int64            `json:"id" validate:"required,gt=0"`
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Stock       int              `json:"stock"`
	ImageURL    string           `json:"imageUrl" validate:"omitempty,max=500"`
}

// UpdateProductRequest represents a partial product update. Absent fields
// are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,max=500"`
}

// ProductResponse wraps a product with a human readable message
type ProductResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product,omitempty"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all catalog routes. Mutations run behind
// adminOnly when it is not nil.
func (h *ProductHandler) RegisterRoutes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Get("/search", h.Search)
	r.Get("/product", h.GetProduct)
	r.Get("/products", h.ListProducts)

	r.Group(func(r chi.Router) {
		if adminOnly != nil {
			r.Use(adminOnly)
		}
		r.Post("/product", h.CreateProduct)
		r.Delete("/product", h.DeleteProduct)
		r.Put("/update", h.UpdateProduct)
	})
}

// Search handles GET /search?q= (or ?name=)
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	term := query.Get("q")
	if term == "" {
		term = query.Get("name")
	}

	products, err := h.catalog.Search(r.Context(), term)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "search products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, h.logger, err, "get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err, "list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// CreateProduct handles POST /product
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), &domain.Product{
		ID:          req.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, ProductResponse{
		Message: "Product created",
		Product: product,
	})
}

// DeleteProduct handles DELETE /product?id=
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		respondWithServiceError(w, h.logger, err, "delete product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{Message: "Product deleted"})
}

// UpdateProduct handles PUT /update?id= with a partial JSON body
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "id")
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondWithServiceError(w, h.logger, err, "update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductResponse{
		Message: "Product updated",
		Product: product,
	})
}
