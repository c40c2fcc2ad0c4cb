package repository

import (
	"context"

	"gestock/internal/domain/model"

	"gorm.io/gorm"
)

type InvoiceItemGormRepository struct {
	db *gorm.DB
}

func NewInvoiceItemGormRepository(db *gorm.DB) *InvoiceItemGormRepository {
	return &InvoiceItemGormRepository{db: db}
}

func (r *InvoiceItemGormRepository) Create(ctx context.Context, item model.InvoiceItem) (model.InvoiceItem, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.InvoiceItem{}, err
	}
	return item, nil
}

func (r *InvoiceItemGormRepository) CreateBulk(ctx context.Context, invoiceID int64, items []model.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *InvoiceItemGormRepository) ListByInvoiceID(ctx context.Context, userID int64, invoiceID int64) ([]model.InvoiceItem, error) {
	var items []model.InvoiceItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.InvoiceItem{}, err
	}
	return items, nil
}

// 請求書削除の前に明細をまとめて削除（0件でもエラーにしない）
func (r *InvoiceItemGormRepository) DeleteByInvoiceID(ctx context.Context, userID int64, invoiceID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND invoice_id = ?", userID, invoiceID).
		Delete(&model.InvoiceItem{}).Error
}
