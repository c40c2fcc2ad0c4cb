package repository

import (
	"context"
	"errors"

	"gestock/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// 最終ログインの更新など
	Update(ctx context.Context, user *model.User) error
	// 強制ログアウト用にトークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
