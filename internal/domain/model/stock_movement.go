package model

import "time"

//在庫変動の履歴（入庫・販売・手動調整）

type StockMovementReason string

const (
	StockMovementEntree     StockMovementReason = "ENTREE"
	StockMovementVente      StockMovementReason = "VENTE"
	StockMovementAjustement StockMovementReason = "AJUSTEMENT"
)

type StockMovement struct {
	ID        int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64               `gorm:"not null;index" json:"user_id"`
	ProductID int64               `gorm:"not null;index" json:"product_id"`
	Delta     int64               `gorm:"not null" json:"delta"`
	Reason    StockMovementReason `gorm:"type:varchar(20);not null" json:"reason"`
	Note      string              `gorm:"type:varchar(255)" json:"note"`
	CreatedAt time.Time           `gorm:"not null;autoCreateTime" json:"created_at"`
}
