package repository

import (
	"context"

	"gestock/internal/domain/model"

	"gorm.io/gorm"
)

type StockMovementGormRepository struct {
	db *gorm.DB
}

func NewStockMovementGormRepository(db *gorm.DB) *StockMovementGormRepository {
	return &StockMovementGormRepository{db: db}
}

func (r *StockMovementGormRepository) Create(ctx context.Context, mv model.StockMovement) error {
	return r.db.WithContext(ctx).Create(&mv).Error
}

func (r *StockMovementGormRepository) ListByProduct(ctx context.Context, userID int64, productID int64, limit int) ([]model.StockMovement, error) {
	var items []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("id desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.StockMovement{}, err
	}
	return items, nil
}
