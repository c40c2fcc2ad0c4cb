package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusFinal     InvoiceStatus = "final"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type Invoice struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64         `gorm:"not null;index" json:"user_id"`
	InvoiceNumber string        `gorm:"type:varchar(50);not null;index" json:"invoice_number"`
	ClientName    string        `gorm:"type:varchar(255);not null" json:"client_name"`
	ClientPhone   string        `gorm:"type:varchar(30)" json:"client_phone"`
	InvoiceDate   time.Time     `gorm:"not null" json:"invoice_date"`
	Subtotal      int64         `gorm:"not null" json:"subtotal"`
	TaxRate       string        `gorm:"type:varchar(10);not null" json:"tax_rate"`
	TaxAmount     int64         `gorm:"not null" json:"tax_amount"`
	TotalAmount   int64         `gorm:"not null" json:"total_amount"`
	Status        InvoiceStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	Notes         string        `gorm:"type:text" json:"notes"`
	SalesID       *int64        `gorm:"index" json:"sales_id"`
	CreatedAt     time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
