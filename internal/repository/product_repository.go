package repository

import (
	"context"
	"errors"

	"gestock/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page   int
	Limit  int
	Q      string
	Marque string
}

// 在庫照合に使う商品の識別子（名前・ブランド・色）
type ProductIdentity struct {
	NomProduit string
	Marque     string
	Couleur    string
}

// 商品の永続化だけを約束。全て user_id でスコープ。
type ProductRepository interface {
	List(ctx context.Context, userID int64, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, userID int64, id int64) (model.Product, error)

	// 識別子が一致して quantite_stock > 0 の最初の1件
	FindInStock(ctx context.Context, userID int64, ident ProductIdentity) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, userID int64, id int64) error

	// 在庫の現在値を設定
	SetStock(ctx context.Context, userID int64, id int64, newStock int64) error

	// 在庫が足りるときだけ減らす（条件付きUPDATE、RowsAffectedで判定）
	DecreaseStockIfAvailable(ctx context.Context, userID int64, id int64, qty int64) (bool, error)

	// 撮影済み写真のキーを保存
	SetPhotoKey(ctx context.Context, userID int64, id int64, key string) error
}
