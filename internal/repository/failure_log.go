package repository

import (
	"context"
	"storefront-order-service/internal/model"
	"time"

	"gorm.io/gorm"
)

type FailureLogRepository interface {
	Record(ctx context.Context, orderID, step string, cause error) error
	List(ctx context.Context, limit int) ([]*model.AncillaryFailure, error)
	ListByOrder(ctx context.Context, orderID string) ([]*model.AncillaryFailure, error)
}

type failureLogRepositoryImpl struct {
	db *gorm.DB
}

func NewFailureLogRepository(db *gorm.DB) FailureLogRepository {
	return &failureLogRepositoryImpl{db: db}
}

func (r *failureLogRepositoryImpl) Record(ctx context.Context, orderID, step string, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}

	return r.db.WithContext(ctx).Create(&model.AncillaryFailure{
		OrderID:   orderID,
		Step:      step,
		Error:     msg,
		CreatedAt: time.Now(),
	}).Error
}

func (r *failureLogRepositoryImpl) List(ctx context.Context, limit int) ([]*model.AncillaryFailure, error) {
	if limit <= 0 {
		limit = 100
	}

	var failures []*model.AncillaryFailure
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&failures).Error
	if err != nil {
		return nil, err
	}

	return failures, nil
}

func (r *failureLogRepositoryImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.AncillaryFailure, error) {
	var failures []*model.AncillaryFailure
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id").
		Find(&failures).Error
	if err != nil {
		return nil, err
	}

	return failures, nil
}
