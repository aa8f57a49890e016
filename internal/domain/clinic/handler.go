package clinic

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/clinics", h.List)
}

// List returns the clinics available for booking, with their BPJS codes and
// queue groups, so upstream kiosks can render the clinic picker.
func (h *Handler) List(c echo.Context) error {
	clinics, err := h.repo.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": http.StatusOK,
		"data": clinics,
	})
}
