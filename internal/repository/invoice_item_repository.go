package repository

import (
	"context"

	"gestock/internal/domain/model"
)

type InvoiceItemRepository interface {
	Create(ctx context.Context, item model.InvoiceItem) (model.InvoiceItem, error)
	CreateBulk(ctx context.Context, invoiceID int64, items []model.InvoiceItem) error
	ListByInvoiceID(ctx context.Context, userID int64, invoiceID int64) ([]model.InvoiceItem, error)
	DeleteByInvoiceID(ctx context.Context, userID int64, invoiceID int64) error
}
