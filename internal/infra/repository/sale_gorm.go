package repository

import (
	"context"
	"errors"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"

	"gorm.io/gorm"
)

type SaleGormRepository struct {
	db *gorm.DB
}

func NewSaleGormRepository(db *gorm.DB) *SaleGormRepository {
	return &SaleGormRepository{db: db}
}

func (r *SaleGormRepository) FindByID(ctx context.Context, userID int64, saleID int64) (model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, saleID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Sale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Sale{}, err
	}
	return s, nil
}

func (r *SaleGormRepository) ListByUser(ctx context.Context, userID int64, page int, limit int) ([]model.Sale, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Sale{}, 0, err
	}

	var items []model.Sale
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Sale{}, 0, err
	}

	return items, total, nil
}

func (r *SaleGormRepository) Create(ctx context.Context, sale model.Sale) (model.Sale, error) {
	if err := r.db.WithContext(ctx).Create(&sale).Error; err != nil {
		return model.Sale{}, err
	}
	return sale, nil
}

func (r *SaleGormRepository) SetInvoiceID(ctx context.Context, userID int64, saleID int64, invoiceID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("user_id = ? AND id = ?", userID, saleID).
		Update("invoice_id", invoiceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SaleGormRepository) ClearInvoiceID(ctx context.Context, userID int64, saleID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("user_id = ? AND id = ?", userID, saleID).
		Update("invoice_id", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SaleGormRepository) Delete(ctx context.Context, userID int64, saleID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, saleID).
		Delete(&model.Sale{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SaleGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Sale, bool, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Sale{}, false, nil
	}
	if err != nil {
		return model.Sale{}, false, err
	}
	return s, true, nil
}
