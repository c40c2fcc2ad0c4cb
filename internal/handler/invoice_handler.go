package handler

import (
	"net/http"
	"strconv"

	"gestock/internal/config"
	"gestock/internal/middleware"
	"gestock/internal/repository"
	"gestock/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /invoices のHTTP
type InvoiceHandler struct {
	uc *usecase.InvoiceUsecase
}

// DI
func NewInvoiceHandler(uc *usecase.InvoiceUsecase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

type InvoiceItemRequest struct {
	ProductName string `json:"product_name"`
	Imei        string `json:"imei"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Marque      string `json:"marque"`
	Modele      string `json:"modele"`
}

type InvoiceCreateRequest struct {
	ClientName  string               `json:"client_name"`
	ClientPhone string               `json:"client_phone"`
	InvoiceDate string               `json:"invoice_date"`
	Notes       string               `json:"notes"`
	Items       []InvoiceItemRequest `json:"items"`
}

type InvoiceStatusRequest struct {
	Status string `json:"status"`
}

type InvoicePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

func (h *InvoiceHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/invoices")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("", h.create)
	g.PUT("/:id/status", h.setStatus)
	g.PUT("/:id/payment-status", h.setPaymentStatus)
	g.DELETE("/:id", h.delete)
}

func (h *InvoiceHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListInvoices(c.Request().Context(), userID, usecase.ListInvoicesInput{
		Page:          page,
		Limit:         limit,
		Status:        c.QueryParam("status"),
		PaymentStatus: c.QueryParam("payment_status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetInvoice(c.Request().Context(), userID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req InvoiceCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.CreateInvoiceItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateInvoiceItemInput{
			ProductName: it.ProductName,
			Imei:        it.Imei,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Marque:      it.Marque,
			Modele:      it.Modele,
		})
	}

	out, err := h.uc.CreateInvoice(c.Request().Context(), userID, usecase.CreateInvoiceInput{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		InvoiceDate: req.InvoiceDate,
		Notes:       req.Notes,
		Items:       items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *InvoiceHandler) setStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req InvoiceStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetStatus(c.Request().Context(), userID, id, req.Status); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "status updated"})
}

func (h *InvoiceHandler) setPaymentStatus(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req InvoicePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetPaymentStatus(c.Request().Context(), userID, id, req.PaymentStatus); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "payment status updated"})
}

func (h *InvoiceHandler) delete(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteInvoice(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
