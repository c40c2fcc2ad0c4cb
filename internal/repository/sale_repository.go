package repository

import (
	"context"

	"gestock/internal/domain/model"
)

type SaleRepository interface {
	FindByID(ctx context.Context, userID int64, saleID int64) (model.Sale, error)
	ListByUser(ctx context.Context, userID int64, page int, limit int) ([]model.Sale, int64, error)
	Create(ctx context.Context, sale model.Sale) (model.Sale, error)

	// 請求書への逆リンクを保存
	SetInvoiceID(ctx context.Context, userID int64, saleID int64, invoiceID int64) error
	// 逆リンクを外す（請求書を単独で削除したとき）
	ClearInvoiceID(ctx context.Context, userID int64, saleID int64) error

	Delete(ctx context.Context, userID int64, saleID int64) error

	// 同じキーなら同じ結果を返すための検索
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Sale, bool, error)
}
