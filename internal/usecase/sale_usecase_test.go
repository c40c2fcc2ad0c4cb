package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"
	"gestock/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mock: SaleRepository
// =====================

type SaleRepoMock struct{ mock.Mock }

func (m *SaleRepoMock) FindByID(ctx context.Context, userID int64, saleID int64) (model.Sale, error) {
	args := m.Called(ctx, userID, saleID)
	s, _ := args.Get(0).(model.Sale)
	return s, args.Error(1)
}

func (m *SaleRepoMock) ListByUser(ctx context.Context, userID int64, page int, limit int) ([]model.Sale, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	items, _ := args.Get(0).([]model.Sale)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *SaleRepoMock) Create(ctx context.Context, sale model.Sale) (model.Sale, error) {
	args := m.Called(ctx, sale)
	s, _ := args.Get(0).(model.Sale)
	return s, args.Error(1)
}

func (m *SaleRepoMock) SetInvoiceID(ctx context.Context, userID int64, saleID int64, invoiceID int64) error {
	args := m.Called(ctx, userID, saleID, invoiceID)
	return args.Error(0)
}

func (m *SaleRepoMock) ClearInvoiceID(ctx context.Context, userID int64, saleID int64) error {
	args := m.Called(ctx, userID, saleID)
	return args.Error(0)
}

func (m *SaleRepoMock) Delete(ctx context.Context, userID int64, saleID int64) error {
	args := m.Called(ctx, userID, saleID)
	return args.Error(0)
}

func (m *SaleRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Sale, bool, error) {
	args := m.Called(ctx, userID, key)
	s, _ := args.Get(0).(model.Sale)
	return s, args.Bool(1), args.Error(2)
}

// =====================
// Mock: InvoiceRepository
// =====================

type InvoiceRepoMock struct{ mock.Mock }

func (m *InvoiceRepoMock) FindByID(ctx context.Context, userID int64, invoiceID int64) (model.Invoice, error) {
	args := m.Called(ctx, userID, invoiceID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *InvoiceRepoMock) ListByUser(ctx context.Context, userID int64, q repo.InvoiceListQuery) ([]model.Invoice, int64, error) {
	args := m.Called(ctx, userID, q)
	items, _ := args.Get(0).([]model.Invoice)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *InvoiceRepoMock) Create(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	args := m.Called(ctx, inv)
	out, _ := args.Get(0).(model.Invoice)
	return out, args.Error(1)
}

func (m *InvoiceRepoMock) FindBySaleID(ctx context.Context, userID int64, saleID int64) (model.Invoice, bool, error) {
	args := m.Called(ctx, userID, saleID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Bool(1), args.Error(2)
}

func (m *InvoiceRepoMock) UpdateStatus(ctx context.Context, userID int64, invoiceID int64, status model.InvoiceStatus) error {
	args := m.Called(ctx, userID, invoiceID, status)
	return args.Error(0)
}

func (m *InvoiceRepoMock) UpdatePaymentStatus(ctx context.Context, userID int64, invoiceID int64, status model.PaymentStatus) error {
	args := m.Called(ctx, userID, invoiceID, status)
	return args.Error(0)
}

func (m *InvoiceRepoMock) Delete(ctx context.Context, userID int64, invoiceID int64) error {
	args := m.Called(ctx, userID, invoiceID)
	return args.Error(0)
}

// =====================
// Mock: InvoiceItemRepository
// =====================

type InvoiceItemRepoMock struct{ mock.Mock }

func (m *InvoiceItemRepoMock) Create(ctx context.Context, item model.InvoiceItem) (model.InvoiceItem, error) {
	args := m.Called(ctx, item)
	out, _ := args.Get(0).(model.InvoiceItem)
	return out, args.Error(1)
}

func (m *InvoiceItemRepoMock) CreateBulk(ctx context.Context, invoiceID int64, items []model.InvoiceItem) error {
	args := m.Called(ctx, invoiceID, items)
	return args.Error(0)
}

func (m *InvoiceItemRepoMock) ListByInvoiceID(ctx context.Context, userID int64, invoiceID int64) ([]model.InvoiceItem, error) {
	args := m.Called(ctx, userID, invoiceID)
	items, _ := args.Get(0).([]model.InvoiceItem)
	return items, args.Error(1)
}

func (m *InvoiceItemRepoMock) DeleteByInvoiceID(ctx context.Context, userID int64, invoiceID int64) error {
	args := m.Called(ctx, userID, invoiceID)
	return args.Error(0)
}

// =====================
// Mock: ProductRepository
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, userID int64, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, userID, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, userID int64, id int64) (model.Product, error) {
	args := m.Called(ctx, userID, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindInStock(ctx context.Context, userID int64, ident repo.ProductIdentity) (model.Product, error) {
	args := m.Called(ctx, userID, ident)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, userID int64, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *ProductRepoMock) SetStock(ctx context.Context, userID int64, id int64, newStock int64) error {
	args := m.Called(ctx, userID, id, newStock)
	return args.Error(0)
}

func (m *ProductRepoMock) DecreaseStockIfAvailable(ctx context.Context, userID int64, id int64, qty int64) (bool, error) {
	args := m.Called(ctx, userID, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *ProductRepoMock) SetPhotoKey(ctx context.Context, userID int64, id int64, key string) error {
	args := m.Called(ctx, userID, id, key)
	return args.Error(0)
}

// =====================
// Mock: StockMovementRepository
// =====================

type MovementRepoMock struct{ mock.Mock }

func (m *MovementRepoMock) Create(ctx context.Context, mv model.StockMovement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *MovementRepoMock) ListByProduct(ctx context.Context, userID int64, productID int64, limit int) ([]model.StockMovement, error) {
	args := m.Called(ctx, userID, productID, limit)
	items, _ := args.Get(0).([]model.StockMovement)
	return items, args.Error(1)
}

// =====================
// 固定部品
// =====================

type fixedIDGen struct{ id string }

func (g *fixedIDGen) NewID() string { return g.id }

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type saleFixture struct {
	saleRepo     *SaleRepoMock
	invoiceRepo  *InvoiceRepoMock
	itemRepo     *InvoiceItemRepoMock
	productRepo  *ProductRepoMock
	movementRepo *MovementRepoMock
	uc           *usecase.SaleUsecase
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	f := &saleFixture{
		saleRepo:     &SaleRepoMock{},
		invoiceRepo:  &InvoiceRepoMock{},
		itemRepo:     &InvoiceItemRepoMock{},
		productRepo:  &ProductRepoMock{},
		movementRepo: &MovementRepoMock{},
	}
	f.uc = usecase.NewSaleUsecase(
		f.saleRepo,
		f.invoiceRepo,
		f.itemRepo,
		f.productRepo,
		f.movementRepo,
		&fixedIDGen{id: "a1b2c3d4-0000-0000-0000-000000000000"},
		&fixedClock{t: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)},
		usecase.DefaultSaleSettings("XOF"),
	)
	return f
}

func validInput() usecase.CreateSaleInput {
	return usecase.CreateSaleInput{
		NomPrenomClient: "Jean Dupont",
		NumeroTelephone: "771234567",
		DateVente:       "2025-01-15",
		NomProduit:      "iPhone 15",
		Marque:          "Apple",
		Couleur:         "Noir",
		ImeiTelephone:   "356789012345678",
		Prix:            500000,
		IdempotencyKey:  "key-1",
	}
}

func iphone15() model.Product {
	return model.Product{
		ID:            7,
		UserID:        1,
		NomProduit:    "iPhone 15",
		Marque:        "Apple",
		Couleur:       "Noir",
		PrixUnitaire:  500000,
		QuantiteStock: 1,
	}
}

// =====================
// CreateSale
// =====================

// 在庫1台のiPhone 15を50万で販売：税9万・合計59万、請求書はpending/unpaid、在庫は0になる
func TestCreateSale_Success(t *testing.T) {
	f := newSaleFixture(t)
	ctx := context.Background()
	product := iphone15()

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), repo.ProductIdentity{
		NomProduit: "iPhone 15", Marque: "Apple", Couleur: "Noir",
	}).Return(product, nil)

	f.saleRepo.On("Create", mock.Anything, mock.MatchedBy(func(s model.Sale) bool {
		return s.UserID == 1 &&
			s.NomPrenomClient == "Jean Dupont" &&
			s.Modele == "iPhone 15" &&
			s.Marque == "Apple" &&
			s.Prix == 500000 &&
			s.IdempotencyKey == "key-1"
	})).Return(model.Sale{
		ID: 42, UserID: 1, Reference: "a1b2c3d4-0000-0000-0000-000000000000",
		NomPrenomClient: "Jean Dupont", NumeroTelephone: "771234567",
		Modele: "iPhone 15", Marque: "Apple", Prix: 500000,
	}, nil)

	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv model.Invoice) bool {
		return inv.UserID == 1 &&
			inv.Subtotal == 500000 &&
			inv.TaxAmount == 90000 &&
			inv.TotalAmount == 590000 &&
			inv.Status == model.InvoiceStatusPending &&
			inv.PaymentStatus == model.PaymentStatusUnpaid &&
			inv.SalesID != nil && *inv.SalesID == 42 &&
			inv.InvoiceNumber == "FAC-A1B2C3D4"
	})).Return(model.Invoice{
		ID: 9, UserID: 1, InvoiceNumber: "FAC-A1B2C3D4",
		Subtotal: 500000, TaxAmount: 90000, TotalAmount: 590000,
		Status: model.InvoiceStatusPending, PaymentStatus: model.PaymentStatusUnpaid,
	}, nil)

	f.saleRepo.On("SetInvoiceID", mock.Anything, int64(1), int64(42), int64(9)).Return(nil)

	f.itemRepo.On("Create", mock.Anything, mock.MatchedBy(func(it model.InvoiceItem) bool {
		return it.InvoiceID == 9 &&
			it.Quantity == 1 &&
			it.UnitPrice == 500000 &&
			it.TotalPrice == 500000 &&
			it.ProductName == "iPhone 15"
	})).Return(model.InvoiceItem{ID: 1}, nil)

	f.productRepo.On("DecreaseStockIfAvailable", mock.Anything, int64(1), int64(7), int64(1)).
		Return(true, nil)
	f.movementRepo.On("Create", mock.Anything, mock.MatchedBy(func(mv model.StockMovement) bool {
		return mv.ProductID == 7 && mv.Delta == -1 && mv.Reason == model.StockMovementVente
	})).Return(nil)

	refreshed := product
	refreshed.QuantiteStock = 0
	f.productRepo.On("FindByID", mock.Anything, int64(1), int64(7)).Return(refreshed, nil)

	out, err := f.uc.CreateSale(ctx, 1, validInput())

	assert.NoError(t, err)
	assert.Empty(t, out.StockWarning)
	assert.Equal(t, int64(42), out.Sale.ID)
	assert.NotNil(t, out.Sale.InvoiceID)
	assert.Equal(t, int64(9), *out.Sale.InvoiceID)
	assert.Equal(t, int64(90000), out.Invoice.TaxAmount)
	assert.Equal(t, int64(590000), out.Invoice.TotalAmount)
	assert.Equal(t, model.InvoiceStatusPending, out.Invoice.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, out.Invoice.PaymentStatus)
	assert.Equal(t, int64(0), out.Product.QuantiteStock)

	f.saleRepo.AssertExpectations(t)
	f.invoiceRepo.AssertExpectations(t)
	f.itemRepo.AssertExpectations(t)
	f.productRepo.AssertExpectations(t)
	f.movementRepo.AssertExpectations(t)
}

// 在庫に無い商品は書き込み前に400で止まる
func TestCreateSale_ProductNotInStock(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), mock.Anything).
		Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.CreateSale(context.Background(), 1, validInput())

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "product not found in inventory", he.Message)

	// 何も書かれていない
	f.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 請求書作成に失敗したら販売を補償削除して500を返す
func TestCreateSale_InvoiceFailureCompensates(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), mock.Anything).
		Return(iphone15(), nil)
	f.saleRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Sale{ID: 42, UserID: 1, Reference: "a1b2c3d4-0000-0000-0000-000000000000"}, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Invoice{}, errors.New("insert failed"))

	// 補償：請求書は書かれていないので販売だけ消える
	f.invoiceRepo.On("FindBySaleID", mock.Anything, int64(1), int64(42)).
		Return(model.Invoice{}, false, nil)
	f.saleRepo.On("Delete", mock.Anything, int64(1), int64(42)).Return(nil)

	_, err := f.uc.CreateSale(context.Background(), 1, validInput())

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)
	assert.Contains(t, he.Message, "create invoice failed")

	f.saleRepo.AssertCalled(t, "Delete", mock.Anything, int64(1), int64(42))
	f.productRepo.AssertNotCalled(t, "DecreaseStockIfAvailable", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// 明細作成に失敗したら明細→請求書→販売の順に補償する
func TestCreateSale_ItemFailureCompensatesAll(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), mock.Anything).
		Return(iphone15(), nil)
	f.saleRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Sale{ID: 42, UserID: 1, Reference: "a1b2c3d4-0000-0000-0000-000000000000"}, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Invoice{ID: 9, UserID: 1}, nil)
	f.saleRepo.On("SetInvoiceID", mock.Anything, int64(1), int64(42), int64(9)).Return(nil)
	f.itemRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.InvoiceItem{}, errors.New("insert failed"))

	f.invoiceRepo.On("FindBySaleID", mock.Anything, int64(1), int64(42)).
		Return(model.Invoice{ID: 9, UserID: 1}, true, nil)
	f.itemRepo.On("DeleteByInvoiceID", mock.Anything, int64(1), int64(9)).Return(nil)
	f.invoiceRepo.On("Delete", mock.Anything, int64(1), int64(9)).Return(nil)
	f.saleRepo.On("Delete", mock.Anything, int64(1), int64(42)).Return(nil)

	_, err := f.uc.CreateSale(context.Background(), 1, validInput())

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)
	assert.Contains(t, he.Message, "create invoice item failed")

	f.itemRepo.AssertCalled(t, "DeleteByInvoiceID", mock.Anything, int64(1), int64(9))
	f.invoiceRepo.AssertCalled(t, "Delete", mock.Anything, int64(1), int64(9))
	f.saleRepo.AssertCalled(t, "Delete", mock.Anything, int64(1), int64(42))
}

// 補償自体が失敗したら手動対応を促すメッセージになる
func TestCreateSale_CompensationFailure(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), mock.Anything).
		Return(iphone15(), nil)
	f.saleRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Sale{ID: 42, UserID: 1, Reference: "a1b2c3d4-0000-0000-0000-000000000000"}, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Invoice{}, errors.New("insert failed"))

	f.invoiceRepo.On("FindBySaleID", mock.Anything, int64(1), int64(42)).
		Return(model.Invoice{}, false, nil)
	f.saleRepo.On("Delete", mock.Anything, int64(1), int64(42)).
		Return(errors.New("connection lost"))

	_, err := f.uc.CreateSale(context.Background(), 1, validInput())

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 500, he.Status)
	assert.Contains(t, he.Message, "manual intervention required")
	assert.Contains(t, he.Message, "delete sale")
}

// 在庫控除の失敗は警告止まりでエラーにはしない（販売・請求書は確定済み）
func TestCreateSale_StockDeductionFailureIsWarning(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), mock.Anything).
		Return(iphone15(), nil)
	f.saleRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Sale{ID: 42, UserID: 1, Reference: "a1b2c3d4-0000-0000-0000-000000000000"}, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.Invoice{ID: 9, UserID: 1}, nil)
	f.saleRepo.On("SetInvoiceID", mock.Anything, int64(1), int64(42), int64(9)).Return(nil)
	f.itemRepo.On("Create", mock.Anything, mock.Anything).
		Return(model.InvoiceItem{ID: 1}, nil)

	// 別の販売が先に最後の1台を取った
	f.productRepo.On("DecreaseStockIfAvailable", mock.Anything, int64(1), int64(7), int64(1)).
		Return(false, nil)

	out, err := f.uc.CreateSale(context.Background(), 1, validInput())

	assert.NoError(t, err)
	assert.Contains(t, out.StockWarning, "iPhone 15")
	assert.Equal(t, int64(42), out.Sale.ID)

	// 巻き戻していない
	f.saleRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.movementRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 同じidempotency keyの再送は既存の結果を返し、何も書かない
func TestCreateSale_IdempotentReplay(t *testing.T) {
	f := newSaleFixture(t)

	invID := int64(9)
	existing := model.Sale{ID: 42, UserID: 1, InvoiceID: &invID, Prix: 500000}
	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(existing, true, nil)
	f.invoiceRepo.On("FindBySaleID", mock.Anything, int64(1), int64(42)).
		Return(model.Invoice{ID: 9, TotalAmount: 590000}, true, nil)

	out, err := f.uc.CreateSale(context.Background(), 1, validInput())

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.Sale.ID)
	assert.Equal(t, int64(590000), out.Invoice.TotalAmount)

	f.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.productRepo.AssertNotCalled(t, "FindInStock", mock.Anything, mock.Anything, mock.Anything)
}

// prix=0なら商品マスタの単価を使う
func TestCreateSale_DefaultsPriceFromProduct(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").
		Return(model.Sale{}, false, nil)
	f.productRepo.On("FindInStock", mock.Anything, int64(1), mock.Anything).
		Return(iphone15(), nil)
	f.saleRepo.On("Create", mock.Anything, mock.MatchedBy(func(s model.Sale) bool {
		return s.Prix == 500000
	})).Return(model.Sale{ID: 42, UserID: 1, Reference: "a1b2c3d4-0000-0000-0000-000000000000", Prix: 500000}, nil)
	f.invoiceRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv model.Invoice) bool {
		return inv.Subtotal == 500000 && inv.TotalAmount == 590000
	})).Return(model.Invoice{ID: 9}, nil)
	f.saleRepo.On("SetInvoiceID", mock.Anything, int64(1), int64(42), int64(9)).Return(nil)
	f.itemRepo.On("Create", mock.Anything, mock.Anything).Return(model.InvoiceItem{ID: 1}, nil)
	f.productRepo.On("DecreaseStockIfAvailable", mock.Anything, int64(1), int64(7), int64(1)).Return(true, nil)
	f.movementRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.productRepo.On("FindByID", mock.Anything, int64(1), int64(7)).Return(iphone15(), nil)

	in := validInput()
	in.Prix = 0
	_, err := f.uc.CreateSale(context.Background(), 1, in)
	assert.NoError(t, err)
}

func TestCreateSale_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*usecase.CreateSaleInput)
		want   string
	}{
		{"empty client name", func(in *usecase.CreateSaleInput) { in.NomPrenomClient = "  " }, "client name required"},
		{"empty phone", func(in *usecase.CreateSaleInput) { in.NumeroTelephone = "" }, "client phone required"},
		{"bad date", func(in *usecase.CreateSaleInput) { in.DateVente = "15/01/2025" }, "invalid sale date"},
		{"missing brand", func(in *usecase.CreateSaleInput) { in.Marque = "" }, "product name, brand and color are required"},
		{"negative price", func(in *usecase.CreateSaleInput) { in.Prix = -1 }, "prix must be >= 0"},
		{"missing idempotency key", func(in *usecase.CreateSaleInput) { in.IdempotencyKey = "" }, "invalid idempotency_key"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSaleFixture(t)
			in := validInput()
			tc.mutate(&in)

			_, err := f.uc.CreateSale(context.Background(), 1, in)

			he, ok := usecase.AsHTTPError(err)
			assert.True(t, ok)
			assert.Equal(t, 400, he.Status)
			assert.Equal(t, tc.want, he.Message)
			f.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

// =====================
// GetSale / DeleteSale
// =====================

func TestGetSale_NotFound(t *testing.T) {
	f := newSaleFixture(t)
	f.saleRepo.On("FindByID", mock.Anything, int64(1), int64(99)).
		Return(model.Sale{}, repo.ErrNotFound)

	_, err := f.uc.GetSale(context.Background(), 1, 99)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestDeleteSale_RemovesLinkedInvoice(t *testing.T) {
	f := newSaleFixture(t)

	f.saleRepo.On("FindByID", mock.Anything, int64(1), int64(42)).
		Return(model.Sale{ID: 42, UserID: 1}, nil)
	f.invoiceRepo.On("FindBySaleID", mock.Anything, int64(1), int64(42)).
		Return(model.Invoice{ID: 9, UserID: 1}, true, nil)
	f.itemRepo.On("DeleteByInvoiceID", mock.Anything, int64(1), int64(9)).Return(nil)
	f.invoiceRepo.On("Delete", mock.Anything, int64(1), int64(9)).Return(nil)
	f.saleRepo.On("Delete", mock.Anything, int64(1), int64(42)).Return(nil)

	err := f.uc.DeleteSale(context.Background(), 1, 42)

	assert.NoError(t, err)
	f.itemRepo.AssertCalled(t, "DeleteByInvoiceID", mock.Anything, int64(1), int64(9))
	f.invoiceRepo.AssertCalled(t, "Delete", mock.Anything, int64(1), int64(9))
	f.saleRepo.AssertCalled(t, "Delete", mock.Anything, int64(1), int64(42))
}
