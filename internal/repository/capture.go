package repository

import (
	"context"
	"storefront-order-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CaptureRepository interface {
	Create(ctx context.Context, tx *gorm.DB, captures []*model.PaymentCapture) error
	ListByExternalOrder(ctx context.Context, externalOrderID string) ([]*model.PaymentCapture, error)
}

type captureRepositoryImpl struct {
	db *gorm.DB
}

func NewCaptureRepository(db *gorm.DB) CaptureRepository {
	return &captureRepositoryImpl{
		db: db,
	}
}

func (r *captureRepositoryImpl) Create(ctx context.Context, tx *gorm.DB, captures []*model.PaymentCapture) error {
	if len(captures) == 0 {
		return nil
	}
	if tx == nil {
		tx = r.db
	}

	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&captures).Error
}

func (r *captureRepositoryImpl) ListByExternalOrder(ctx context.Context, externalOrderID string) ([]*model.PaymentCapture, error) {
	var captures []*model.PaymentCapture
	err := r.db.WithContext(ctx).
		Where("external_order_id = ?", externalOrderID).
		Order("created_at").
		Find(&captures).Error

	if err != nil {
		return nil, err
	}

	return captures, nil
}
