package repository

import (
	"context"
	"errors"

	"gestock/internal/domain/model"
	repo "gestock/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) List(ctx context.Context, userID int64, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).Where("user_id = ?", userID)
	if q.Q != "" {
		base = base.Where("nom_produit LIKE ?", "%"+q.Q+"%")
	}
	if q.Marque != "" {
		base = base.Where("marque = ?", q.Marque)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	err := base.
		Order("id desc").
		Limit(q.Limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) FindByID(ctx context.Context, userID int64, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 識別子が一致して在庫が残っている最初の1件
func (r *ProductGormRepository) FindInStock(ctx context.Context, userID int64, ident repo.ProductIdentity) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND nom_produit = ? AND marque = ? AND couleur = ? AND quantite_stock > 0",
			userID, ident.NomProduit, ident.Marque, ident.Couleur).
		Order("id asc").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("user_id = ? AND id = ?", p.UserID, p.ID).
		Updates(map[string]interface{}{
			"nom_produit":   p.NomProduit,
			"marque":        p.Marque,
			"couleur":       p.Couleur,
			"description":   p.Description,
			"prix_unitaire": p.PrixUnitaire,
			"imei":          p.Imei,
			"provenance":    p.Provenance,
			"updated_at":    p.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) SoftDelete(ctx context.Context, userID int64, id int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫の現在値を設定
func (r *ProductGormRepository) SetStock(ctx context.Context, userID int64, id int64, newStock int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("quantite_stock", newStock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす
func (r *ProductGormRepository) DecreaseStockIfAvailable(ctx context.Context, userID int64, id int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("user_id = ? AND id = ? AND quantite_stock >= ?", userID, id, qty).
		Update("quantite_stock", gorm.Expr("quantite_stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *ProductGormRepository) SetPhotoKey(ctx context.Context, userID int64, id int64, key string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("photo_key", key)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
