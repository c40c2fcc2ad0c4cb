package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gestock/internal/config"
	"gestock/internal/domain/model"
	"gestock/internal/handler"
	infraRepo "gestock/internal/infra/repository"
	auth "gestock/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type hmacIssuer struct {
	secret string
	ttl    time.Duration
}

func (i *hmacIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	exp := now.Add(i.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", userID),
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := tok.SignedString([]byte(i.secret))
	return signed, exp, err
}

// sqlite上で認証フローを通しで動かすテスト環境
type authEnv struct {
	e  *echo.Echo
	db *gorm.DB
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.RefreshToken{}))

	cfg := config.Config{JWTSecret: testSecret, CookieSecure: false}

	userRepo := infraRepo.NewUserRepository(db)
	rtRepo := infraRepo.NewRefreshTokenRepository(db)

	issuer := &hmacIssuer{secret: testSecret, ttl: 15 * time.Minute}
	refreshTTL := 14 * 24 * time.Hour

	registerUC := auth.NewRegisterUserUsecase(userRepo, auth.NewBcryptPasswordHasher(bcrypt.MinCost), &realClock{})
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, auth.NewBcryptPasswordVerifier(), issuer, &uuidGenerator{}, &realClock{}, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(rtRepo)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, &uuidGenerator{}, &realClock{}, refreshTTL)
	logoutAllUC := auth.NewLogoutAllUsecase(userRepo, rtRepo)

	e := echo.New()
	handler.NewAuthHandler(registerUC, loginUC, logoutUC, refreshUC, logoutAllUC, refreshTTL, cfg.CookieSecure).
		RegisterRoutes(e, cfg, userRepo)

	return &authEnv{e: e, db: db}
}

func (env *authEnv) post(t *testing.T, path string, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *authEnv) register(t *testing.T) {
	t.Helper()
	rec := env.post(t, "/auth/register", `{"email":"seller@example.com","password":"correct-horse-battery"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func (env *authEnv) login(t *testing.T) (accessToken string, cookies []*http.Cookie) {
	t.Helper()
	rec := env.post(t, "/auth/login", `{"email":"seller@example.com","password":"correct-horse-battery"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token.AccessToken)

	return body.Token.AccessToken, rec.Result().Cookies()
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// =====================
// Login cookies
// =====================

func TestLogin_SetsRefreshAndCsrfCookies(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t)

	_, cookies := env.login(t)

	refresh := cookieByName(cookies, "refresh_token")
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, refresh.HttpOnly)

	// csrf cookieはフロントのJSが読むのでHttpOnlyではない
	csrf := cookieByName(cookies, "csrf_token")
	require.NotNil(t, csrf)
	assert.NotEmpty(t, csrf.Value)
	assert.False(t, csrf.HttpOnly)
}

// =====================
// Refresh
// =====================

func TestRefresh_ReissuesAccessToken(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t)
	_, cookies := env.login(t)
	oldRefresh := cookieByName(cookies, "refresh_token")
	require.NotNil(t, oldRefresh)

	rec := env.post(t, "/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(oldRefresh)
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token.AccessToken)
	assert.Equal(t, 900, body.Token.ExpiresIn)

	// tokenが回転している
	newRefresh := cookieByName(rec.Result().Cookies(), "refresh_token")
	require.NotNil(t, newRefresh)
	assert.NotEmpty(t, newRefresh.Value)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)
	assert.NotNil(t, cookieByName(rec.Result().Cookies(), "csrf_token"))
}

func TestRefresh_MissingCookie(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.post(t, "/auth/refresh", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_RotatedTokenCannotBeReplayed(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t)
	_, cookies := env.login(t)
	oldRefresh := cookieByName(cookies, "refresh_token")
	require.NotNil(t, oldRefresh)

	first := env.post(t, "/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(oldRefresh)
	})
	require.Equal(t, http.StatusOK, first.Code)

	// 回転済みの古いtokenを再提示すると拒否され、全tokenが失効する
	replay := env.post(t, "/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(oldRefresh)
	})
	assert.Equal(t, http.StatusUnauthorized, replay.Code)

	newRefresh := cookieByName(first.Result().Cookies(), "refresh_token")
	require.NotNil(t, newRefresh)
	after := env.post(t, "/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(newRefresh)
	})
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

// =====================
// LogoutAll
// =====================

func TestLogoutAll_InvalidatesExistingTokens(t *testing.T) {
	env := newAuthEnv(t)
	env.register(t)
	accessToken, cookies := env.login(t)
	refresh := cookieByName(cookies, "refresh_token")
	require.NotNil(t, refresh)

	rec := env.post(t, "/auth/logout-all", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		NewTokenVersion int `json:"new_token_version"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.NewTokenVersion)

	// token_versionが上がったので既発行のJWTは使えない
	again := env.post(t, "/auth/logout-all", "", func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	})
	assert.Equal(t, http.StatusUnauthorized, again.Code)

	// refresh tokenも全て失効している
	refreshed := env.post(t, "/auth/refresh", "", func(req *http.Request) {
		req.AddCookie(refresh)
	})
	assert.Equal(t, http.StatusUnauthorized, refreshed.Code)
}

func TestLogoutAll_RequiresAuth(t *testing.T) {
	env := newAuthEnv(t)

	rec := env.post(t, "/auth/logout-all", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
