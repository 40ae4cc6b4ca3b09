package handler

import (
	"net/http"

	"coffeeshop/internal/config"
	"coffeeshop/internal/middleware"
	"coffeeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /paymentのHTTP。createは認証必須、notificationはゲートウェイからの
// サーバ間コールバックなので認証なし（署名で検証する）。
type PaymentHandler struct {
	checkout   *usecase.CheckoutUsecase
	notify     *usecase.NotificationUsecase
	testNotify *usecase.TestNotificationUsecase
}

// DI
func NewPaymentHandler(
	checkout *usecase.CheckoutUsecase,
	notify *usecase.NotificationUsecase,
	testNotify *usecase.TestNotificationUsecase,
) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, notify: notify, testNotify: testNotify}
}

type CheckoutItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
}

type CheckoutRequest struct {
	Items    []CheckoutItemRequest `json:"items"`
	Customer CustomerRequest       `json:"customer"`
}

type CustomerRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

// Midtrans通知のボディ。必要なフィールドだけ拾う。
type NotificationRequest struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
}

type TestNotificationRequest struct {
	TransactionID string `json:"transaction_id"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payment")

	create := g.Group("")
	create.Use(middleware.AuthIdentity(cfg))
	create.POST("/create", h.create)

	g.POST("/notification", h.notification)

	//本番では公開しない
	if !cfg.IsProductionEnv() {
		g.POST("/test-notification", h.testNotification)
	}
}

func (h *PaymentHandler) create(c echo.Context) error {
	externalID, ok := getExternalIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.CheckoutItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CheckoutItemInput{
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
		})
	}

	out, err := h.checkout.Checkout(c.Request().Context(), externalID, usecase.CheckoutInput{
		Items: items,
		Customer: usecase.CustomerDetailsInput{
			FirstName:  req.Customer.FirstName,
			LastName:   req.Customer.LastName,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
			Address:    req.Customer.Address,
			City:       req.Customer.City,
			PostalCode: req.Customer.PostalCode,
		},
		IdempotencyKey: c.Request().Header.Get("X-Idempotency-Key"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) notification(c echo.Context) error {
	var req NotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.notify.Process(c.Request().Context(), usecase.NotificationInput{
		OrderID:           req.OrderID,
		StatusCode:        req.StatusCode,
		GrossAmount:       req.GrossAmount,
		SignatureKey:      req.SignatureKey,
		TransactionStatus: req.TransactionStatus,
		FraudStatus:       req.FraudStatus,
		PaymentType:       req.PaymentType,
		TransactionTime:   req.TransactionTime,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) testNotification(c echo.Context) error {
	var req TestNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.testNotify.Send(c.Request().Context(), req.TransactionID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
