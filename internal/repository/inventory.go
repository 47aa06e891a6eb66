package repository

import (
	"context"
	"errors"
	"fmt"
	"storefront-order-service/internal/model"
	"time"

	"gorm.io/gorm"
)

var (
	ErrStockUnavailable = errors.New("not enough stock to deduct")
	ErrInvalidQuantity  = errors.New("deduct quantity must be positive")
)

type InventoryRepository interface {
	Deduct(ctx context.Context, productID string, quantity int) error
}

type inventoryRepoImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepoImpl{
		db: db,
	}
}

// Deduct decrements stock only while enough remains, so concurrent orders
// cannot drive it negative.
func (r *inventoryRepoImpl) Deduct(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	result := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStockUnavailable
	}

	return nil
}
