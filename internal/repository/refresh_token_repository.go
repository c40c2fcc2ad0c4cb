package repository

import (
	"context"
	"errors"

	"gestock/internal/domain/model"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// revoked_at をセットして無効化
	Revoke(ctx context.Context, tokenID string) error
	RevokeAllByUser(ctx context.Context, userID int64) error
}
