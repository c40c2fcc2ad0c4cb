package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"

	"github.com/shopspring/decimal"
)

type InvoiceUsecase struct {
	invoiceRepo repo.InvoiceRepository
	itemRepo    repo.InvoiceItemRepository
	saleRepo    repo.SaleRepository
	idGen       IDGenerator
	clock       Clock
	settings    SaleSettings
}

// DI
func NewInvoiceUsecase(
	invoiceRepo repo.InvoiceRepository,
	itemRepo repo.InvoiceItemRepository,
	saleRepo repo.SaleRepository,
	idGen IDGenerator,
	clock Clock,
	settings SaleSettings,
) *InvoiceUsecase {
	return &InvoiceUsecase{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		saleRepo:    saleRepo,
		idGen:       idGen,
		clock:       clock,
		settings:    settings,
	}
}

type ListInvoicesInput struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
}

type InvoiceListOutput struct {
	Items []model.Invoice `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *InvoiceUsecase) ListInvoices(ctx context.Context, userID int64, in ListInvoicesInput) (InvoiceListOutput, error) {
	if userID <= 0 {
		return InvoiceListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return InvoiceListOutput{}, newValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return InvoiceListOutput{}, newValidationError("invalid limit")
	}
	switch in.Status {
	case "", string(model.InvoiceStatusPending), string(model.InvoiceStatusFinal), string(model.InvoiceStatusCancelled):
	default:
		return InvoiceListOutput{}, newValidationError("invalid status")
	}
	switch in.PaymentStatus {
	case "", string(model.PaymentStatusUnpaid), string(model.PaymentStatusPartial), string(model.PaymentStatusPaid):
	default:
		return InvoiceListOutput{}, newValidationError("invalid payment_status")
	}

	items, total, err := u.invoiceRepo.ListByUser(ctx, userID, repo.InvoiceListQuery{
		Page:          in.Page,
		Limit:         in.Limit,
		Status:        in.Status,
		PaymentStatus: in.PaymentStatus,
	})
	if err != nil {
		return InvoiceListOutput{}, newWriteError("db error")
	}

	return InvoiceListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

type InvoiceDetailOutput struct {
	Invoice model.Invoice       `json:"invoice"`
	Items   []model.InvoiceItem `json:"items"`
}

func (u *InvoiceUsecase) GetInvoice(ctx context.Context, userID int64, invoiceID int64) (InvoiceDetailOutput, error) {
	var out InvoiceDetailOutput
	if userID <= 0 {
		return out, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if invoiceID <= 0 {
		return out, newValidationError("invalid invoice id")
	}

	inv, err := u.invoiceRepo.FindByID(ctx, userID, invoiceID)
	if errors.Is(err, repo.ErrNotFound) {
		return out, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return out, newWriteError("db error")
	}

	items, err := u.itemRepo.ListByInvoiceID(ctx, userID, invoiceID)
	if err != nil {
		return out, newWriteError("db error")
	}

	out.Invoice = inv
	out.Items = items
	return out, nil
}

type CreateInvoiceItemInput struct {
	ProductName string
	Imei        string
	Quantity    int64
	UnitPrice   int64
	Marque      string
	Modele      string
}

type CreateInvoiceInput struct {
	ClientName  string
	ClientPhone string
	InvoiceDate string // YYYY-MM-DD
	Notes       string
	Items       []CreateInvoiceItemInput
}

// CreateInvoiceは販売に紐づかない請求書を手動で作る。
// 番号は自動生成の請求書と同じく識別子断片から導出する（連番カウンタなし）。
// 明細の書き込みに失敗したら請求書ごと補償削除する
func (u *InvoiceUsecase) CreateInvoice(ctx context.Context, userID int64, in CreateInvoiceInput) (InvoiceDetailOutput, error) {
	var out InvoiceDetailOutput
	if userID <= 0 {
		return out, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return out, newValidationError("client name required")
	}
	invoiceDate, err := time.Parse("2006-01-02", in.InvoiceDate)
	if err != nil {
		return out, newValidationError("invalid invoice date")
	}
	if len(in.Items) == 0 {
		return out, newValidationError("at least one item required")
	}

	var subtotal int64
	items := make([]model.InvoiceItem, 0, len(in.Items))
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductName) == "" {
			return out, newValidationError("item product name required")
		}
		if it.Quantity < 1 {
			return out, newValidationError("item quantity must be >= 1")
		}
		if it.UnitPrice < 0 {
			return out, newValidationError("item unit price must be >= 0")
		}
		total := it.Quantity * it.UnitPrice
		subtotal += total
		items = append(items, model.InvoiceItem{
			UserID:      userID,
			ProductName: strings.TrimSpace(it.ProductName),
			Imei:        strings.TrimSpace(it.Imei),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  total,
			Marque:      strings.TrimSpace(it.Marque),
			Modele:      strings.TrimSpace(it.Modele),
		})
	}

	taxAmount := decimal.NewFromInt(subtotal).Mul(u.settings.TaxRate).Round(0).IntPart()

	now := u.clock.Now()
	inv, err := u.invoiceRepo.Create(ctx, model.Invoice{
		UserID:        userID,
		InvoiceNumber: invoiceNumberFromReference(u.idGen.NewID()),
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientPhone:   strings.TrimSpace(in.ClientPhone),
		InvoiceDate:   invoiceDate,
		Subtotal:      subtotal,
		TaxRate:       u.settings.TaxRate.String(),
		TaxAmount:     taxAmount,
		TotalAmount:   subtotal + taxAmount,
		Status:        model.InvoiceStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return out, newWriteError("create invoice failed: " + err.Error())
	}

	if err := u.itemRepo.CreateBulk(ctx, inv.ID, items); err != nil {
		// 明細が書けなければ請求書も残さない
		if delErr := u.invoiceRepo.Delete(ctx, userID, inv.ID); delErr != nil {
			return out, newCompensationError(delErr.Error())
		}
		return out, newWriteError("create invoice items failed: " + err.Error())
	}

	created, err := u.itemRepo.ListByInvoiceID(ctx, userID, inv.ID)
	if err != nil {
		return out, newWriteError("db error")
	}

	out.Invoice = inv
	out.Items = created
	return out, nil
}

func (u *InvoiceUsecase) SetStatus(ctx context.Context, userID int64, invoiceID int64, status string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if invoiceID <= 0 {
		return newValidationError("invalid invoice id")
	}
	switch status {
	case string(model.InvoiceStatusPending), string(model.InvoiceStatusFinal), string(model.InvoiceStatusCancelled):
	default:
		return newValidationError("invalid status")
	}

	err := u.invoiceRepo.UpdateStatus(ctx, userID, invoiceID, model.InvoiceStatus(status))
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return newWriteError("db error")
	}
	return nil
}

func (u *InvoiceUsecase) SetPaymentStatus(ctx context.Context, userID int64, invoiceID int64, status string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if invoiceID <= 0 {
		return newValidationError("invalid invoice id")
	}
	switch status {
	case string(model.PaymentStatusUnpaid), string(model.PaymentStatusPartial), string(model.PaymentStatusPaid):
	default:
		return newValidationError("invalid payment_status")
	}

	err := u.invoiceRepo.UpdatePaymentStatus(ctx, userID, invoiceID, model.PaymentStatus(status))
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return newWriteError("db error")
	}
	return nil
}

// DeleteInvoiceは明細→請求書の順で消し、販売側の逆リンクも外す
func (u *InvoiceUsecase) DeleteInvoice(ctx context.Context, userID int64, invoiceID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if invoiceID <= 0 {
		return newValidationError("invalid invoice id")
	}

	inv, err := u.invoiceRepo.FindByID(ctx, userID, invoiceID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return newWriteError("db error")
	}

	if err := u.itemRepo.DeleteByInvoiceID(ctx, userID, invoiceID); err != nil {
		return newWriteError("delete invoice items failed: " + err.Error())
	}
	if err := u.invoiceRepo.Delete(ctx, userID, invoiceID); err != nil {
		return newWriteError("delete invoice failed: " + err.Error())
	}

	if inv.SalesID != nil {
		// 逆リンク切れは致命でない
		_ = u.saleRepo.ClearInvoiceID(ctx, userID, *inv.SalesID)
	}
	return nil
}
