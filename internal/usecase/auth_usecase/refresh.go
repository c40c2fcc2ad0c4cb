package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gestock/internal/domain/model"
	"gestock/internal/repository"
)

// handlerからusecaseに渡す入力
type RefreshInput struct {
	PlainRefreshToken string
	UserAgent         string
}

// handlerがJSONにして返す
type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type RefreshSideEffect struct {
	PlainRefreshToken string
}

// refresh tokenが無い・期限切れ・無効
var ErrRefreshTokenInvalid = errors.New("refresh token is invalid")

// 失効済みtokenの再利用を検知した（全token失効済み）
var ErrRefreshTokenReused = errors.New("refresh token reuse detected")

type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

// DI
func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// Cookieのrefresh tokenを検証してAccessTokenを再発行する。
// 古いtokenは失効させ、新しいrefresh tokenに回転する。
func (u *RefreshUsecase) Execute(ctx context.Context, in RefreshInput) (RefreshOutput, RefreshSideEffect, error) {
	var out RefreshOutput
	var side RefreshSideEffect

	if in.PlainRefreshToken == "" {
		return out, side, ErrRefreshTokenInvalid
	}

	//DBにはsha256しか無いので平文をハッシュして照合
	hash := sha256.Sum256([]byte(in.PlainRefreshToken))
	token, err := u.rtRepo.FindByTokenHash(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrRefreshTokenInvalid
		}
		return out, side, err
	}

	now := u.clock.Now()

	//失効済みtokenが再び届いた＝盗難の可能性。全tokenを失効させる
	if token.RevokedAt != nil {
		if err := u.rtRepo.RevokeAllByUser(ctx, token.UserID); err != nil {
			return out, side, err
		}
		return out, side, ErrRefreshTokenReused
	}

	//期限切れ
	if now.After(token.ExpiresAt) {
		if err := u.rtRepo.Revoke(ctx, token.ID); err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, err
		}
		return out, side, ErrRefreshTokenInvalid
	}

	//発行時と別のUser-Agentからの利用も盗難扱い
	if token.UserAgent != "" && in.UserAgent != token.UserAgent {
		if err := u.rtRepo.RevokeAllByUser(ctx, token.UserID); err != nil {
			return out, side, err
		}
		return out, side, ErrRefreshTokenReused
	}

	user, err := u.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrRefreshTokenInvalid
		}
		return out, side, err
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	//回転：古いtokenを失効させて新しいtokenを発行
	if err := u.rtRepo.Revoke(ctx, token.ID); err != nil {
		return out, side, err
	}

	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return out, side, err
	}
	newHash := sha256.Sum256([]byte(plainRefresh))

	refresh := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: hex.EncodeToString(newHash[:]),
		UserAgent: in.UserAgent,
		ExpiresAt: now.Add(u.refreshTTL),
		CreatedAt: now,
	}
	if err := u.rtRepo.Create(ctx, refresh); err != nil {
		return out, side, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, user.TokenVersion, now)
	if err != nil {
		return out, side, err
	}

	out.Token = JwtAccessToken{
		AccessToken:  accessToken,
		ExpiresIn:    int(accessExp.Sub(now).Seconds()),
		TokenVersion: user.TokenVersion,
	}
	side.PlainRefreshToken = plainRefresh

	return out, side, nil
}
