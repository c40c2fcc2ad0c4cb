package repository

import (
	"context"

	"gestock/internal/domain/model"
)

type InvoiceListQuery struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
}

type InvoiceRepository interface {
	FindByID(ctx context.Context, userID int64, invoiceID int64) (model.Invoice, error)
	ListByUser(ctx context.Context, userID int64, q InvoiceListQuery) ([]model.Invoice, int64, error)
	Create(ctx context.Context, inv model.Invoice) (model.Invoice, error)

	// 販売へのリンクで1件検索（補償処理で使う）
	FindBySaleID(ctx context.Context, userID int64, saleID int64) (model.Invoice, bool, error)

	UpdateStatus(ctx context.Context, userID int64, invoiceID int64, status model.InvoiceStatus) error
	UpdatePaymentStatus(ctx context.Context, userID int64, invoiceID int64, status model.PaymentStatus) error
	Delete(ctx context.Context, userID int64, invoiceID int64) error
}
