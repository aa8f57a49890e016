package checkin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bpjs/bridge/internal/platform/auth"
)

type Handler struct {
	orch *Orchestrator
}

func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{orch: orch}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/checkin", h.CheckIn)
	api.POST("/checkin/sep", h.CheckInWithSEP)
	api.POST("/checkin/control", h.CheckInControlVisit)
}

// The orchestrator returns a Result for every outcome, so each handler is a
// bind-call-respond passthrough; the HTTP status mirrors the result code.
// The operator recorded on the audit rows defaults to the authenticated
// token subject when the request body does not name one.

func (h *Handler) CheckIn(c echo.Context) error {
	var req CheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defaultUser(c, &req)
	res := h.orch.CheckIn(c.Request().Context(), req)
	return c.JSON(statusFor(res.Code), res)
}

func (h *Handler) CheckInWithSEP(c echo.Context) error {
	var req SEPCheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defaultUser(c, &req.CheckInRequest)
	res := h.orch.CheckInWithSEP(c.Request().Context(), req)
	return c.JSON(statusFor(res.Code), res)
}

func (h *Handler) CheckInControlVisit(c echo.Context) error {
	var req ControlCheckInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defaultUser(c, &req.CheckInRequest)
	res := h.orch.CheckInControlVisit(c.Request().Context(), req)
	return c.JSON(statusFor(res.Code), res)
}

func defaultUser(c echo.Context, req *CheckInRequest) {
	if req.User == "" {
		req.User = auth.UserFromContext(c.Request().Context())
	}
}

// statusFor clamps remote authority codes (201, 401, legacy 1) into valid
// HTTP statuses while keeping the result body's code untouched.
func statusFor(code int) int {
	if code >= 100 && code <= 599 {
		return code
	}
	return http.StatusOK
}
