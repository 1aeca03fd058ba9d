package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/dhruvrajsinh5757/sgpagri-sub001/internal/models"
	apperrors "github.com/dhruvrajsinh5757/sgpagri-sub001/pkg/errors"
)

// ProductService manages marketplace listings.
type ProductService struct {
	db *gorm.DB
}

// NewProductService constructs a ProductService.
func NewProductService(db *gorm.DB) (*ProductService, error) {
	if db == nil {
		return nil, errors.New("product service: db is required")
	}
	return &ProductService{db: db}, nil
}

// CreateProductInput captures required fields when listing a product.
type CreateProductInput struct {
	UserID      string
	Name        string
	Category    string
	Description string
	Price       float64
	Quantity    float64
	Unit        string
}

// UpdateProductInput describes mutable product fields. A nil pointer indicates no change.
type UpdateProductInput struct {
	Name        *string
	Category    *string
	Description *string
	Price       *float64
	Quantity    *float64
	Unit        *string
	IsAvailable *bool
}

// Create publishes a new listing.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, errors.New("product service: user id is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.New("product service: name is required")
	}

	if input.Price <= 0 {
		return nil, apperrors.NewBadRequest("price must be positive")
	}

	product := models.Product{
		UserID:      userID,
		Name:        name,
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Quantity:    input.Quantity,
		Unit:        strings.TrimSpace(input.Unit),
		IsAvailable: true,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("product service: create product: %w", err)
	}

	return &product, nil
}

// ListProductsInput defines filters for browsing the marketplace.
type ListProductsInput struct {
	Category      string
	SellerID      string
	OnlyAvailable bool
	Limit         int
	Offset        int
}

// List returns marketplace listings matching the supplied filters.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) ([]models.Product, error) {
	ctx = ensureContext(ctx)

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	q := s.db.WithContext(ctx).Model(&models.Product{})
	if category := strings.TrimSpace(input.Category); category != "" {
		q = q.Where("category = ?", category)
	}
	if sellerID := strings.TrimSpace(input.SellerID); sellerID != "" {
		q = q.Where("user_id = ?", sellerID)
	}
	if input.OnlyAvailable {
		q = q.Where("is_available = ?", true)
	}

	var rows []models.Product
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(maxInt(0, input.Offset)).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("product service: list products: %w", err)
	}

	return rows, nil
}

// Get retrieves a single listing.
func (s *ProductService) Get(ctx context.Context, productID string) (*models.Product, error) {
	ctx = ensureContext(ctx)

	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("product service: load product: %w", err)
	}
	return &product, nil
}

// Update applies the provided changes to a listing owned by the user.
func (s *ProductService) Update(ctx context.Context, userID, productID string, input UpdateProductInput) (*models.Product, error) {
	ctx = ensureContext(ctx)

	product, err := s.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.New("product service: name is required")
		}
		product.Name = name
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.NewBadRequest("price must be positive")
		}
		product.Price = *input.Price
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		product.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}

	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, fmt.Errorf("product service: update product: %w", err)
	}
	return product, nil
}

// Delete removes a listing owned by the user.
func (s *ProductService) Delete(ctx context.Context, userID, productID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", productID, userID).
		Delete(&models.Product{})
	if result.Error != nil {
		return fmt.Errorf("product service: delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
