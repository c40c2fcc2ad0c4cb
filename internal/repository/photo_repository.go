package repository

import "context"

// 商品写真のオブジェクトストレージ保存を約束
type PhotoRepository interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
