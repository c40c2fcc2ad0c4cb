package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID            int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64          `gorm:"not null;index" json:"user_id"`
	NomProduit    string         `gorm:"type:varchar(255);not null" json:"nom_produit"`
	Marque        string         `gorm:"type:varchar(100);not null" json:"marque"`
	Couleur       string         `gorm:"type:varchar(100);not null" json:"couleur"`
	Description   string         `gorm:"type:text" json:"description"`
	PrixUnitaire  int64          `gorm:"not null" json:"prix_unitaire"`
	QuantiteStock int64          `gorm:"not null" json:"quantite_stock"`
	Imei          string         `gorm:"type:varchar(50)" json:"imei"`
	Provenance    string         `gorm:"type:varchar(255)" json:"provenance"`
	PhotoKey      string         `gorm:"type:varchar(255)" json:"photo_key"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
