package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"
)

type ProductUsecase struct {
	productRepo  repo.ProductRepository
	movementRepo repo.StockMovementRepository
	photoRepo    repo.PhotoRepository // nilなら写真機能は無効
	idGen        IDGenerator
	clock        Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	movementRepo repo.StockMovementRepository,
	photoRepo repo.PhotoRepository,
	idGen IDGenerator,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		photoRepo:    photoRepo,
		idGen:        idGen,
		clock:        clock,
	}
}

// GET /products の入力DTO
type ListProductsInput struct {
	Page   int
	Limit  int
	Q      string
	Marque string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, userID int64, in ListProductsInput) (ProductListOutput, error) {
	if userID <= 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return ProductListOutput{}, newValidationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, newValidationError("invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, newValidationError("q too long")
	}

	items, total, err := u.productRepo.List(ctx, userID, repo.ProductListQuery{
		Page:   in.Page,
		Limit:  in.Limit,
		Q:      strings.TrimSpace(in.Q),
		Marque: strings.TrimSpace(in.Marque),
	})
	if err != nil {
		return ProductListOutput{}, newWriteError("db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, userID int64, productID int64) (model.Product, error) {
	if userID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, newValidationError("invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, newWriteError("db error")
	}
	return p, nil
}

type CreateProductInput struct {
	NomProduit    string
	Marque        string
	Couleur       string
	Description   string
	PrixUnitaire  int64
	QuantiteStock int64
	Imei          string
	Provenance    string
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, userID int64, in CreateProductInput) (model.Product, error) {
	if userID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.NomProduit) == "" {
		return model.Product{}, newValidationError("nom_produit required")
	}
	if strings.TrimSpace(in.Marque) == "" {
		return model.Product{}, newValidationError("marque required")
	}
	if strings.TrimSpace(in.Couleur) == "" {
		return model.Product{}, newValidationError("couleur required")
	}
	if in.PrixUnitaire < 0 {
		return model.Product{}, newValidationError("prix_unitaire must be >= 0")
	}
	if in.QuantiteStock < 0 {
		return model.Product{}, newValidationError("quantite_stock must be >= 0")
	}

	now := u.clock.Now()
	p, err := u.productRepo.Create(ctx, model.Product{
		UserID:        userID,
		NomProduit:    strings.TrimSpace(in.NomProduit),
		Marque:        strings.TrimSpace(in.Marque),
		Couleur:       strings.TrimSpace(in.Couleur),
		Description:   in.Description,
		PrixUnitaire:  in.PrixUnitaire,
		QuantiteStock: in.QuantiteStock,
		Imei:          strings.TrimSpace(in.Imei),
		Provenance:    strings.TrimSpace(in.Provenance),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return model.Product{}, newWriteError("db error")
	}

	// 初期在庫も履歴に残す
	if in.QuantiteStock > 0 {
		_ = u.movementRepo.Create(ctx, model.StockMovement{
			UserID:    userID,
			ProductID: p.ID,
			Delta:     in.QuantiteStock,
			Reason:    model.StockMovementEntree,
			Note:      "stock initial",
			CreatedAt: now,
		})
	}

	return p, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, userID int64, productID int64, in CreateProductInput) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return newValidationError("invalid product id")
	}
	if strings.TrimSpace(in.NomProduit) == "" {
		return newValidationError("nom_produit required")
	}
	if strings.TrimSpace(in.Marque) == "" {
		return newValidationError("marque required")
	}
	if strings.TrimSpace(in.Couleur) == "" {
		return newValidationError("couleur required")
	}
	if in.PrixUnitaire < 0 {
		return newValidationError("prix_unitaire must be >= 0")
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:           productID,
		UserID:       userID,
		NomProduit:   strings.TrimSpace(in.NomProduit),
		Marque:       strings.TrimSpace(in.Marque),
		Couleur:      strings.TrimSpace(in.Couleur),
		Description:  in.Description,
		PrixUnitaire: in.PrixUnitaire,
		Imei:         strings.TrimSpace(in.Imei),
		Provenance:   strings.TrimSpace(in.Provenance),
		UpdatedAt:    u.clock.Now(),
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return newWriteError("db error")
	}
	return nil
}

func (u *ProductUsecase) DeleteProduct(ctx context.Context, userID int64, productID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return newValidationError("invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return newWriteError("db error")
	}
	return nil
}

// SetStockは在庫の現在値を直接設定する（入庫・棚卸し）。履歴に差分を残す
func (u *ProductUsecase) SetStock(ctx context.Context, userID int64, productID int64, newStock int64, reason string) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return newValidationError("invalid product id")
	}
	if newStock < 0 {
		return newValidationError("quantite_stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return newValidationError("reason required")
	}

	//変更前の在庫（before）
	p, err := u.productRepo.FindByID(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return newWriteError("db error")
	}

	if err := u.productRepo.SetStock(ctx, userID, productID, newStock); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return newWriteError("db error")
	}

	//履歴を作成（差分）
	if err := u.movementRepo.Create(ctx, model.StockMovement{
		UserID:    userID,
		ProductID: productID,
		Delta:     newStock - p.QuantiteStock,
		Reason:    model.StockMovementAjustement,
		Note:      strings.TrimSpace(reason),
		CreatedAt: u.clock.Now(),
	}); err != nil {
		return newWriteError("db error")
	}

	return nil
}

func (u *ProductUsecase) ListStockMovements(ctx context.Context, userID int64, productID int64, limit int) ([]model.StockMovement, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return nil, newValidationError("invalid product id")
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	items, err := u.movementRepo.ListByProduct(ctx, userID, productID, limit)
	if err != nil {
		return nil, newWriteError("db error")
	}
	return items, nil
}

type UploadPhotoInput struct {
	Data        []byte
	ContentType string
}

// UploadPhotoは商品写真をオブジェクトストレージへ保存してキーを商品に紐付ける。
func (u *ProductUsecase) UploadPhoto(ctx context.Context, userID int64, productID int64, in UploadPhotoInput) (string, error) {
	if userID <= 0 {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if u.photoRepo == nil {
		return "", NewHTTPError(http.StatusServiceUnavailable, "photo storage not configured")
	}
	if productID <= 0 {
		return "", newValidationError("invalid product id")
	}
	if len(in.Data) == 0 {
		return "", newValidationError("empty file")
	}
	// 5MBまで
	if len(in.Data) > 5<<20 {
		return "", newValidationError("file too large")
	}
	switch in.ContentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return "", newValidationError("unsupported content type")
	}

	p, err := u.productRepo.FindByID(ctx, userID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return "", NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return "", newWriteError("db error")
	}

	key := fmt.Sprintf("products/%d/%d/%s", userID, p.ID, u.idGen.NewID())
	storedKey, err := u.photoRepo.Upload(ctx, key, in.Data, in.ContentType)
	if err != nil {
		return "", newWriteError("photo upload failed")
	}

	if err := u.productRepo.SetPhotoKey(ctx, userID, p.ID, storedKey); err != nil {
		// リンクに失敗したら孤児オブジェクトを残さない
		_ = u.photoRepo.Delete(ctx, storedKey)
		return "", newWriteError("db error")
	}

	return storedKey, nil
}
