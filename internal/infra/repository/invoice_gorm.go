package repository

import (
	"context"
	"errors"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"

	"gorm.io/gorm"
)

type InvoiceGormRepository struct {
	db *gorm.DB
}

func NewInvoiceGormRepository(db *gorm.DB) *InvoiceGormRepository {
	return &InvoiceGormRepository{db: db}
}

func (r *InvoiceGormRepository) FindByID(ctx context.Context, userID int64, invoiceID int64) (model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceGormRepository) ListByUser(ctx context.Context, userID int64, q repo.InvoiceListQuery) ([]model.Invoice, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("user_id = ?", userID)
	if q.Status != "" {
		base = base.Where("status = ?", q.Status)
	}
	if q.PaymentStatus != "" {
		base = base.Where("payment_status = ?", q.PaymentStatus)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Invoice{}, 0, err
	}

	var items []model.Invoice
	offset := (q.Page - 1) * q.Limit
	err := base.
		Order("id desc").
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Invoice{}, 0, err
	}

	return items, total, nil
}

func (r *InvoiceGormRepository) Create(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(&inv).Error; err != nil {
		return model.Invoice{}, err
	}
	return inv, nil
}

func (r *InvoiceGormRepository) FindBySaleID(ctx context.Context, userID int64, saleID int64) (model.Invoice, bool, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sales_id = ?", userID, saleID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Invoice{}, false, nil
	}
	if err != nil {
		return model.Invoice{}, false, err
	}
	return inv, true, nil
}

func (r *InvoiceGormRepository) UpdateStatus(ctx context.Context, userID int64, invoiceID int64, status model.InvoiceStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InvoiceGormRepository) UpdatePaymentStatus(ctx context.Context, userID int64, invoiceID int64, status model.PaymentStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InvoiceGormRepository) Delete(ctx context.Context, userID int64, invoiceID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, invoiceID).
		Delete(&model.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
