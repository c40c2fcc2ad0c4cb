package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"

	"github.com/shopspring/decimal"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 販売ワークフローに明示的に渡す設定（グローバル状態にしない）
type SaleSettings struct {
	TaxRate  decimal.Decimal // 0.18 固定
	Currency string
}

func DefaultSaleSettings(currency string) SaleSettings {
	return SaleSettings{
		TaxRate:  decimal.NewFromFloat(0.18),
		Currency: currency,
	}
}

// SaleUsecaseは販売登録（販売→請求書→明細→在庫控除）の処理。
type SaleUsecase struct {
	saleRepo     repo.SaleRepository
	invoiceRepo  repo.InvoiceRepository
	itemRepo     repo.InvoiceItemRepository
	productRepo  repo.ProductRepository
	movementRepo repo.StockMovementRepository
	idGen        IDGenerator
	clock        Clock
	settings     SaleSettings
}

// DI
func NewSaleUsecase(
	saleRepo repo.SaleRepository,
	invoiceRepo repo.InvoiceRepository,
	itemRepo repo.InvoiceItemRepository,
	productRepo repo.ProductRepository,
	movementRepo repo.StockMovementRepository,
	idGen IDGenerator,
	clock Clock,
	settings SaleSettings,
) *SaleUsecase {
	return &SaleUsecase{
		saleRepo:     saleRepo,
		invoiceRepo:  invoiceRepo,
		itemRepo:     itemRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		idGen:        idGen,
		clock:        clock,
		settings:     settings,
	}
}

// POST /sales の入力DTO
type CreateSaleInput struct {
	NomPrenomClient string
	NumeroTelephone string
	DateVente       string // YYYY-MM-DD
	NomProduit      string
	Marque          string
	Couleur         string
	ImeiTelephone   string
	Prix            int64
	IdempotencyKey  string
}

type SaleOutput struct {
	Sale    model.Sale    `json:"sale"`
	Invoice model.Invoice `json:"invoice"`
	Product model.Product `json:"product"`
	// 在庫控除に失敗したときだけ入る。販売・請求書は巻き戻さない
	StockWarning string `json:"stock_warning,omitempty"`
}

// CreateSaleは1台の販売を登録する。
// 在庫照合 → 販売作成 → 請求書作成 → 逆リンク → 明細作成 → 在庫控除 の順。
// 販売作成後に失敗したら補償削除（明細→請求書→販売）を実行する。
func (u *SaleUsecase) CreateSale(ctx context.Context, userID int64, in CreateSaleInput) (SaleOutput, error) {
	var out SaleOutput

	if userID <= 0 {
		return out, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// 書き込み前の検証（ここで弾けば補償は不要）
	if strings.TrimSpace(in.NomPrenomClient) == "" {
		return out, newValidationError("client name required")
	}
	if strings.TrimSpace(in.NumeroTelephone) == "" {
		return out, newValidationError("client phone required")
	}
	dateVente, err := time.Parse("2006-01-02", in.DateVente)
	if err != nil {
		return out, newValidationError("invalid sale date")
	}
	ident := repo.ProductIdentity{
		NomProduit: strings.TrimSpace(in.NomProduit),
		Marque:     strings.TrimSpace(in.Marque),
		Couleur:    strings.TrimSpace(in.Couleur),
	}
	if ident.NomProduit == "" || ident.Marque == "" || ident.Couleur == "" {
		return out, newValidationError("product name, brand and color are required")
	}
	if in.Prix < 0 {
		return out, newValidationError("prix must be >= 0")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return out, newValidationError("invalid idempotency_key")
	}

	// 同じキーなら同じ結果（二重送信を書き込みにしない）
	if existing, found, err := u.saleRepo.FindByIdempotencyKey(ctx, userID, key); err != nil {
		return out, newWriteError("db error")
	} else if found {
		return u.replayOutput(ctx, userID, existing)
	}

	// 在庫照合。見つからなければ書き込み前に停止
	product, err := u.productRepo.FindInStock(ctx, userID, ident)
	if errors.Is(err, repo.ErrNotFound) {
		return out, newValidationError("product not found in inventory")
	}
	if err != nil {
		return out, newWriteError("db error")
	}

	prix := in.Prix
	if prix == 0 {
		prix = product.PrixUnitaire
	}

	// 1. 販売を作成。ここで失敗したら補償は不要（何も書かれていない）
	now := u.clock.Now()
	sale := model.Sale{
		UserID:          userID,
		Reference:       u.idGen.NewID(),
		NomPrenomClient: strings.TrimSpace(in.NomPrenomClient),
		NumeroTelephone: strings.TrimSpace(in.NumeroTelephone),
		DateVente:       dateVente,
		Modele:          product.NomProduit,
		Marque:          product.Marque,
		ImeiTelephone:   strings.TrimSpace(in.ImeiTelephone),
		Prix:            prix,
		IdempotencyKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := u.saleRepo.Create(ctx, sale)
	if err != nil {
		// 競合（同時に同じキーが入った等）はもう一回検索して同じ結果を返す
		if ex, found, err2 := u.saleRepo.FindByIdempotencyKey(ctx, userID, key); err2 == nil && found {
			return u.replayOutput(ctx, userID, ex)
		}
		return out, newWriteError("create sale failed: " + err.Error())
	}

	// 2-3. 請求書番号は販売の識別子から決定的に導出（カウンタの再読込レースを避ける）
	subtotal, taxAmount, totalAmount := u.computeTotals(prix)

	// 4. 請求書を作成
	invoice := model.Invoice{
		UserID:        userID,
		InvoiceNumber: invoiceNumberFromReference(created.Reference),
		ClientName:    created.NomPrenomClient,
		ClientPhone:   created.NumeroTelephone,
		InvoiceDate:   dateVente,
		Subtotal:      subtotal,
		TaxRate:       u.settings.TaxRate.String(),
		TaxAmount:     taxAmount,
		TotalAmount:   totalAmount,
		Status:        model.InvoiceStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		SalesID:       &created.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	inv, err := u.invoiceRepo.Create(ctx, invoice)
	if err != nil {
		return out, u.failAndCompensate(ctx, userID, created.ID, "create invoice failed", err)
	}

	// 5. 販売に請求書への逆リンクを保存
	if err := u.saleRepo.SetInvoiceID(ctx, userID, created.ID, inv.ID); err != nil {
		return out, u.failAndCompensate(ctx, userID, created.ID, "link invoice failed", err)
	}

	// 6. 明細は1行（数量1、単価＝販売価格）
	item := model.InvoiceItem{
		UserID:      userID,
		InvoiceID:   inv.ID,
		ProductName: product.NomProduit,
		Imei:        sale.ImeiTelephone,
		Quantity:    1,
		UnitPrice:   prix,
		TotalPrice:  prix,
		Marque:      product.Marque,
		Modele:      product.NomProduit,
	}
	if _, err := u.itemRepo.Create(ctx, item); err != nil {
		return out, u.failAndCompensate(ctx, userID, created.ID, "create invoice item failed", err)
	}

	created.InvoiceID = &inv.ID

	out.Sale = created
	out.Invoice = inv
	out.Product = product

	// 在庫控除。条件付きUPDATEで再検証するので照合後のレース窓がない。
	// 失敗しても確定済みの販売・請求書は巻き戻さず警告に格下げする
	ok, err := u.productRepo.DecreaseStockIfAvailable(ctx, userID, product.ID, 1)
	if err != nil || !ok {
		out.StockWarning = fmt.Sprintf("could not update stock for %s", product.NomProduit)
		return out, nil
	}

	// 履歴（失敗しても販売は返す）
	if err := u.movementRepo.Create(ctx, model.StockMovement{
		UserID:    userID,
		ProductID: product.ID,
		Delta:     -1,
		Reason:    model.StockMovementVente,
		Note:      inv.InvoiceNumber,
		CreatedAt: now,
	}); err != nil {
		out.StockWarning = fmt.Sprintf("could not record stock movement for %s", product.NomProduit)
	}

	// 控除後の在庫をリフレッシュして返す
	if refreshed, err := u.productRepo.FindByID(ctx, userID, product.ID); err == nil {
		out.Product = refreshed
	}

	return out, nil
}

// 二重送信の再送には既存の販売＋請求書をそのまま返す
func (u *SaleUsecase) replayOutput(ctx context.Context, userID int64, sale model.Sale) (SaleOutput, error) {
	out := SaleOutput{Sale: sale}
	if inv, found, err := u.invoiceRepo.FindBySaleID(ctx, userID, sale.ID); err == nil && found {
		out.Invoice = inv
	}
	return out, nil
}

// 補償を実行してエラーを分類する。補償自体の失敗が最重度
func (u *SaleUsecase) failAndCompensate(ctx context.Context, userID int64, saleID int64, stage string, cause error) error {
	if compErr := u.compensate(ctx, userID, saleID); compErr != nil {
		return newCompensationError(compErr.Error())
	}
	return newWriteError(stage + ": " + cause.Error())
}

// 補償削除。明細→請求書→販売の順に、それぞれ独立に試みる
func (u *SaleUsecase) compensate(ctx context.Context, userID int64, saleID int64) error {
	var failures []string

	inv, found, err := u.invoiceRepo.FindBySaleID(ctx, userID, saleID)
	if err != nil {
		failures = append(failures, "find invoice: "+err.Error())
	}
	if found {
		if err := u.itemRepo.DeleteByInvoiceID(ctx, userID, inv.ID); err != nil {
			failures = append(failures, "delete invoice items: "+err.Error())
		}
		if err := u.invoiceRepo.Delete(ctx, userID, inv.ID); err != nil {
			failures = append(failures, "delete invoice: "+err.Error())
		}
	}
	if err := u.saleRepo.Delete(ctx, userID, saleID); err != nil {
		failures = append(failures, "delete sale: "+err.Error())
	}

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}
	return nil
}

// 小計＝販売価格、税額＝小計×税率（端数は四捨五入）、合計＝小計＋税額
func (u *SaleUsecase) computeTotals(prix int64) (subtotal, taxAmount, totalAmount int64) {
	subtotal = prix
	taxAmount = decimal.NewFromInt(prix).Mul(u.settings.TaxRate).Round(0).IntPart()
	totalAmount = subtotal + taxAmount
	return subtotal, taxAmount, totalAmount
}

// 固定プレフィックス＋識別子の先頭8桁を大文字化
func invoiceNumberFromReference(ref string) string {
	frag := strings.ReplaceAll(ref, "-", "")
	if len(frag) > 8 {
		frag = frag[:8]
	}
	return "FAC-" + strings.ToUpper(frag)
}

func (u *SaleUsecase) ListSales(ctx context.Context, userID int64, page int, limit int) ([]model.Sale, int64, error) {
	if userID <= 0 {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return nil, 0, newValidationError("invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, newValidationError("invalid limit")
	}

	items, total, err := u.saleRepo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, newWriteError("db error")
	}
	return items, total, nil
}

type SaleDetailOutput struct {
	Sale    model.Sale     `json:"sale"`
	Invoice *model.Invoice `json:"invoice,omitempty"`
}

func (u *SaleUsecase) GetSale(ctx context.Context, userID int64, saleID int64) (SaleDetailOutput, error) {
	var out SaleDetailOutput
	if userID <= 0 {
		return out, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if saleID <= 0 {
		return out, newValidationError("invalid sale id")
	}

	s, err := u.saleRepo.FindByID(ctx, userID, saleID)
	if errors.Is(err, repo.ErrNotFound) {
		return out, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return out, newWriteError("db error")
	}
	out.Sale = s

	if inv, found, err := u.invoiceRepo.FindBySaleID(ctx, userID, saleID); err == nil && found {
		out.Invoice = &inv
	}
	return out, nil
}

// DeleteSaleは販売を削除する。請求書が紐づいていれば明細→請求書→販売の順に
// 手動で参照整合を保つ（カスケードはしない）
func (u *SaleUsecase) DeleteSale(ctx context.Context, userID int64, saleID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if saleID <= 0 {
		return newValidationError("invalid sale id")
	}

	if _, err := u.saleRepo.FindByID(ctx, userID, saleID); errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	} else if err != nil {
		return newWriteError("db error")
	}

	inv, found, err := u.invoiceRepo.FindBySaleID(ctx, userID, saleID)
	if err != nil {
		return newWriteError("db error")
	}
	if found {
		if err := u.itemRepo.DeleteByInvoiceID(ctx, userID, inv.ID); err != nil {
			return newWriteError("delete invoice items failed: " + err.Error())
		}
		if err := u.invoiceRepo.Delete(ctx, userID, inv.ID); err != nil {
			return newWriteError("delete invoice failed: " + err.Error())
		}
	}
	if err := u.saleRepo.Delete(ctx, userID, saleID); err != nil {
		return newWriteError("delete sale failed: " + err.Error())
	}
	return nil
}
