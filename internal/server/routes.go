package server

import (
	"coffeeshop/internal/config"
	"coffeeshop/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	syncH *handler.SyncHandler,
	menuH *handler.MenuHandler,
	cartH *handler.CartHandler,
	paymentH *handler.PaymentHandler,
	orderH *handler.OrderHandler,
) {
	syncH.RegisterRoutes(e, cfg)
	menuH.RegisterRoutes(e, cfg)
	cartH.RegisterRoutes(e, cfg)
	paymentH.RegisterRoutes(e, cfg)
	orderH.RegisterRoutes(e, cfg)
}
