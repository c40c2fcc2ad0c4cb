package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"gestock/internal/repository"
)

type LogoutUsecase struct {
	rtRepo repository.RefreshTokenRepository
}

// DI
func NewLogoutUsecase(rtRepo repository.RefreshTokenRepository) *LogoutUsecase {
	return &LogoutUsecase{rtRepo: rtRepo}
}

// Cookieのrefresh tokenを無効化する。見つからなくてもログアウト自体は成功扱い
func (u *LogoutUsecase) Execute(ctx context.Context, plainRefreshToken string) error {
	if plainRefreshToken == "" {
		return nil
	}

	hash := sha256.Sum256([]byte(plainRefreshToken))
	token, err := u.rtRepo.FindByTokenHash(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}

	if err := u.rtRepo.Revoke(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return err
	}
	return nil
}
