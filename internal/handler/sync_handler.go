package handler

import (
	"net/http"

	"coffeeshop/internal/config"
	"coffeeshop/internal/middleware"
	"coffeeshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /user/sync のHTTP
type SyncHandler struct {
	uc *usecase.SyncUsecase
}

// DI
func NewSyncHandler(uc *usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

func (h *SyncHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/user")
	g.Use(middleware.AuthIdentity(cfg))
	g.POST("/sync", h.sync)
}

func (h *SyncHandler) sync(c echo.Context) error {
	externalID, ok := getExternalIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	email, _ := c.Get(middleware.CtxEmailKey).(string)
	name, _ := c.Get(middleware.CtxDisplayNameKey).(string)
	image, _ := c.Get(middleware.CtxImageURLKey).(string)

	out, err := h.uc.SyncUser(c.Request().Context(), usecase.SyncInput{
		ExternalID:  externalID,
		Email:       email,
		DisplayName: name,
		ImageURL:    image,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// AuthIdentityが載せた外部IDを取り出す
func getExternalIDFromContext(c echo.Context) (string, bool) {
	externalID, ok := c.Get(middleware.CtxExternalIDKey).(string)
	if !ok || externalID == "" {
		return "", false
	}
	return externalID, true
}
