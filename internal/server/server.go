package server

import (
	"coffeeshop/internal/config"
	"coffeeshop/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func Start(
	addr string,
	cfg config.Config,
	syncH *handler.SyncHandler,
	menuH *handler.MenuHandler,
	cartH *handler.CartHandler,
	paymentH *handler.PaymentHandler,
	orderH *handler.OrderHandler,
) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, cfg, syncH, menuH, cartH, paymentH, orderH)

	return e.Start(addr)
}
