package referral

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/referrals/:norujukan/validity", h.CheckValidity)
}

func (h *Handler) CheckValidity(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	v := h.checker.CheckValidity(c.Request().Context(), c.Param("norujukan"), date)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": http.StatusOK,
		"data": v,
	})
}
