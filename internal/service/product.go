package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"storefront-order-service/internal/dto"
	"storefront-order-service/internal/model"
	"storefront-order-service/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductService is the admin-facing catalog. Stock and weight set here are
// what order placement and shipping read.
type ProductService interface {
	AddProduct(ctx context.Context, req *dto.AddProductRequest) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

func NewProductService(productRepo repository.ProductRepository, logger *slog.Logger) ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &productServiceImpl{
		productRepo: productRepo,
		logger:      logger.With("component", "product_service"),
	}
}

func (s *productServiceImpl) AddProduct(ctx context.Context, req *dto.AddProductRequest) (*model.Product, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	if !req.Weight.IsPositive() {
		return nil, fmt.Errorf("%w: invalid or missing product weight", ErrInvalidRequest)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrInvalidRequest)
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}

	product := &model.Product{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price.Round(2),
		WeightKg: req.Weight,
		Stock:    req.Stock,
		Images:   images,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("%w: create product: %v", ErrPersistence, err)
	}

	s.logger.InfoContext(ctx, "product added", "product_id", product.ID, "stock", product.Stock)
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", ErrPersistence, err)
	}
	return products, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: productId is required", ErrInvalidRequest)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find product: %v", ErrPersistence, err)
	}
	return product, nil
}
