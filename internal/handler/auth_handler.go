package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"gestock/internal/config"
	"gestock/internal/middleware"
	"gestock/internal/repository"
	auth "gestock/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const (
	refreshCookieName = "refresh_token"
	csrfCookieName    = "csrf_token"
)

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase
	loginUC      *auth.LoginUsecase
	logoutUC     *auth.LogoutUsecase
	refreshUC    *auth.RefreshUsecase
	logoutAllUC  *auth.LogoutAllUsecase
	refreshTTL   time.Duration
	cookieSecure bool
}

// DI
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	logoutUC *auth.LogoutUsecase,
	refreshUC *auth.RefreshUsecase,
	logoutAllUC *auth.LogoutAllUsecase,
	refreshTTL time.Duration,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		logoutUC:     logoutUC,
		refreshUC:    refreshUC,
		logoutAllUC:  logoutAllUC,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	e.POST("/auth/register", h.register)
	e.POST("/auth/login", h.login)
	e.POST("/auth/logout", h.logout)
	e.POST("/auth/refresh", h.refresh)

	//logout-allだけは有効なJWTが必要
	g := e.Group("/auth")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.POST("/logout-all", h.logoutAll)
}

// POST /auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidEmailFormat, auth.ErrPasswordTooShort, auth.ErrWeakPassword:
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case auth.ErrEmailAlreadyExists:
			return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	// User-Agentはrefresh tokenに紐付ける
	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().Header.Get("User-Agent"),
	})
	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		case auth.ErrUserInactive:
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	if err := h.setSessionCookies(c, side.PlainRefreshToken); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/refresh
func (h *AuthHandler) refresh(c echo.Context) error {
	plain := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		plain = cookie.Value
	}

	out, side, err := h.refreshUC.Execute(c.Request().Context(), auth.RefreshInput{
		PlainRefreshToken: plain,
		UserAgent:         c.Request().Header.Get("User-Agent"),
	})
	if err != nil {
		switch err {
		case auth.ErrRefreshTokenInvalid, auth.ErrRefreshTokenReused:
			h.clearSessionCookies(c)
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		case auth.ErrUserInactive:
			h.clearSessionCookies(c)
			return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
		default:
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		}
	}

	if err := h.setSessionCookies(c, side.PlainRefreshToken); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, out)
}

// POST /auth/logout
func (h *AuthHandler) logout(c echo.Context) error {
	plain := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		plain = cookie.Value
	}

	if err := h.logoutUC.Execute(c.Request().Context(), plain); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "logged out"})
}

// POST /auth/logout-all
func (h *AuthHandler) logoutAll(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.logoutAllUC.Execute(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	h.clearSessionCookies(c)
	return c.JSON(http.StatusOK, out)
}

// refresh cookie（HttpOnly）とcsrf cookie（JSが読む）をまとめてセットする
func (h *AuthHandler) setSessionCookies(c echo.Context, plainRefresh string) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})

	csrfToken, err := generateCsrfToken(32)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    csrfToken,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// ランダムなURLセーフ文字列を生成
func generateCsrfToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
