package auth

import (
	"context"

	"gestock/internal/repository"
)

// handlerがJSONにして返す
type LogoutAllOutput struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

// 全端末からのログアウト。token_versionを上げて既発行のJWTを無効化し、
// refresh tokenも全て失効させる。
type LogoutAllUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
}

// DI
func NewLogoutAllUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
) *LogoutAllUsecase {
	return &LogoutAllUsecase{userRepo: userRepo, rtRepo: rtRepo}
}

func (u *LogoutAllUsecase) Execute(ctx context.Context, userID int64) (LogoutAllOutput, error) {
	var out LogoutAllOutput

	//token_versionを上げるとTokenVersionGuardが既存JWTを401にする
	if err := u.userRepo.IncrementTokenVersion(ctx, userID); err != nil {
		return out, err
	}

	if err := u.rtRepo.RevokeAllByUser(ctx, userID); err != nil {
		return out, err
	}

	//更新後のtoken_versionを返す
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return out, err
	}

	out.UserID = user.ID
	out.NewTokenVersion = user.TokenVersion
	return out, nil
}
