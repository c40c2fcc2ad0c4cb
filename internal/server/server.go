package server

import (
	"context"
	"net/http"

	"gestock/internal/config"
	"gestock/internal/handler"
	"gestock/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Sales    *handler.SaleHandler
	Invoices *handler.InvoiceHandler
}

// New はルーティング済みのechoインスタンスを返す。
func New(cfg config.Config, h Handlers, userRepo repository.UserRepository) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowCredentials: true,
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Products.RegisterRoutes(e, cfg, userRepo)
	h.Sales.RegisterRoutes(e, cfg, userRepo)
	h.Invoices.RegisterRoutes(e, cfg, userRepo)

	return e
}

// Start はサーバーを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}

// Shutdown はグレースフルに停止する。
func Shutdown(ctx context.Context, e *echo.Echo) error {
	return e.Shutdown(ctx)
}
