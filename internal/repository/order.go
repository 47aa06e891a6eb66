package repository

import (
	"context"
	"storefront-order-service/internal/model"
	"time"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByExternalID(ctx context.Context, externalID, userID string) (*model.Order, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, externalID, userID string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
	ListAll(ctx context.Context) ([]*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)
	ListPaid(ctx context.Context) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts the order together with its items.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// FindByExternalID looks an order up by its paypal order id. An empty userID
// matches any owner.
func (r *orderRepoImpl) FindByExternalID(ctx context.Context, externalID, userID string) (*model.Order, error) {
	var order model.Order
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("external_payment_id = ?", externalID)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	if err := q.First(&order).Error; err != nil {
		return nil, err
	}

	return &order, nil
}

// MarkPaid flips an unpaid order to paid + Placed in a single conditional
// update. It returns gorm.ErrRecordNotFound when no unpaid order matched.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, externalID, userID string) (*model.Order, error) {
	db := r.conn(tx).WithContext(ctx)

	q := db.Model(&model.Order{}).
		Where("external_payment_id = ?", externalID).
		Where("payment = ?", false)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	result := q.Updates(map[string]interface{}{
		"payment":    true,
		"status":     model.OrderStatusPlaced,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var order model.Order
	err := db.Preload("Items").
		Where("external_payment_id = ?", externalID).
		First(&order).Error
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, orderID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *orderRepoImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *orderRepoImpl) ListPaid(ctx context.Context) ([]*model.Order, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("payment = ?", true))
}

func (r *orderRepoImpl) list(_ context.Context, q *gorm.DB) ([]*model.Order, error) {
	var orders []*model.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Find(&orders).
		Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}
