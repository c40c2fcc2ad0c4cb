package repository

import (
	"context"

	"gestock/internal/domain/model"
)

// 在庫変動履歴の保存・取得
type StockMovementRepository interface {
	Create(ctx context.Context, mv model.StockMovement) error
	ListByProduct(ctx context.Context, userID int64, productID int64, limit int) ([]model.StockMovement, error)
}
