package model

import "time"

type Sale struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"not null;index;uniqueIndex:idx_sales_user_idem" json:"user_id"`
	Reference       string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"reference"`
	NomPrenomClient string    `gorm:"type:varchar(255);not null" json:"nom_prenom_client"`
	NumeroTelephone string    `gorm:"type:varchar(30);not null" json:"numero_telephone"`
	DateVente       time.Time `gorm:"not null" json:"date_vente"`
	Modele          string    `gorm:"type:varchar(255);not null" json:"modele"`
	Marque          string    `gorm:"type:varchar(100);not null" json:"marque"`
	ImeiTelephone   string    `gorm:"type:varchar(50)" json:"imei_telephone"`
	Prix            int64     `gorm:"not null" json:"prix"`
	InvoiceID       *int64    `gorm:"index" json:"invoice_id"`
	IdempotencyKey  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_sales_user_idem" json:"-"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
