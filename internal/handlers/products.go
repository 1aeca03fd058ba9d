package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/middleware"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/services"
	appErrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
	"github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/response"
)

// ProductHandler exposes marketplace listing endpoints.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs a product handler.
func NewProductHandler(products *services.ProductService) (*ProductHandler, error) {
	if products == nil {
		return nil, appErrors.ErrInternalServer
	}
	return &ProductHandler{products: products}, nil
}

type createProductPayload struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
	Description string  `json:"description" validate:"omitempty,max=2000"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit        string  `json:"unit" validate:"omitempty,max=32"`
}

// Create publishes a listing for the current user.
func (h *ProductHandler) Create(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload createProductPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.products.Create(requestContext(c), services.CreateProductInput{
		UserID:      userID,
		Name:        payload.Name,
		Category:    payload.Category,
		Description: payload.Description,
		Price:       payload.Price,
		Quantity:    payload.Quantity,
		Unit:        payload.Unit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, product)
}

// List browses the marketplace. Listings from all sellers are visible.
func (h *ProductHandler) List(c *gin.Context) {
	items, err := h.products.List(requestContext(c), services.ListProductsInput{
		Category:      strings.TrimSpace(c.Query("category")),
		SellerID:      strings.TrimSpace(c.Query("seller_id")),
		OnlyAvailable: parseBoolQuery(c, "available"),
		Limit:         parseIntQuery(c, "limit", 25),
		Offset:        parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Get returns a single listing.
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.products.Get(requestContext(c), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

type updateProductPayload struct {
	Name        *string  `json:"name" validate:"omitempty,max=200"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gte=0"`
	Unit        *string  `json:"unit" validate:"omitempty,max=32"`
	IsAvailable *bool    `json:"is_available"`
}

// Update applies changes to a listing owned by the current user.
func (h *ProductHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload updateProductPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	product, err := h.products.Update(requestContext(c), userID, strings.TrimSpace(c.Param("id")), services.UpdateProductInput{
		Name:        payload.Name,
		Category:    payload.Category,
		Description: payload.Description,
		Price:       payload.Price,
		Quantity:    payload.Quantity,
		Unit:        payload.Unit,
		IsAvailable: payload.IsAvailable,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

// Delete removes a listing owned by the current user.
func (h *ProductHandler) Delete(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.products.Delete(requestContext(c), userID, strings.TrimSpace(c.Param("id"))); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
