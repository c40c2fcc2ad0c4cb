package model

type InvoiceItem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"not null;index" json:"user_id"`
	InvoiceID   int64  `gorm:"not null;index" json:"invoice_id"`
	ProductName string `gorm:"type:varchar(255);not null" json:"product_name"`
	Imei        string `gorm:"type:varchar(50)" json:"imei"`
	Quantity    int64  `gorm:"not null" json:"quantity"`
	UnitPrice   int64  `gorm:"not null" json:"unit_price"`
	TotalPrice  int64  `gorm:"not null" json:"total_price"`
	Marque      string `gorm:"type:varchar(100)" json:"marque"`
	Modele      string `gorm:"type:varchar(255)" json:"modele"`
}
