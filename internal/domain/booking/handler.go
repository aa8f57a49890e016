package booking

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/bookings/:identifier", h.FindBooking)
}

// FindBooking resolves a booking by any alternate identifier, optionally
// scoped by ?date=YYYY-MM-DD (defaults to today).
func (h *Handler) FindBooking(c echo.Context) error {
	identifier := c.Param("identifier")
	date := c.QueryParam("date")

	res, err := h.svc.ResolveForSubmission(c.Request().Context(), identifier, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	switch res.Outcome {
	case OutcomeNoMatch:
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"code":    http.StatusNotFound,
			"message": "booking not found for identifier " + identifier,
		})
	case OutcomeAmbiguous:
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"code":    http.StatusConflict,
			"message": "multiple bookings match this identifier on the same date",
			"data":    res.Matches,
		})
	default:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"code": http.StatusOK,
			"data": res.Booking,
		})
	}
}
