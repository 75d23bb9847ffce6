package trip

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"tow-trip-planner/internal/models"
)

// HeaderSessionID identifies the UI session a plan request belongs to.
const HeaderSessionID = "X-Session-ID"

type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/trips/plan", h.Plan)
	g.POST("/trips/confirm", h.Confirm)
	g.GET("/trips", h.List)
	g.GET("/trips/stats", h.Statistics)
	g.GET("/trips/:tripId", h.Get)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: msg, Kind: models.KindInvalidInput, Step: models.StepValidate})
}

// Plan estimates a trip. Requests carrying X-Session-ID supersede the
// previous request of that session.
func (h *Handler) Plan(c echo.Context) error {
	var req models.PlanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sessionID := strings.TrimSpace(c.Request().Header.Get(HeaderSessionID))
	plan, err := h.svc.PlanForSession(c.Request().Context(), sessionID, req)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, plan)
}

func (h *Handler) Confirm(c echo.Context) error {
	var req models.ConfirmTripRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.SessionID == "" {
		req.SessionID = strings.TrimSpace(c.Request().Header.Get(HeaderSessionID))
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	t, err := h.svc.ConfirmTrip(c.Request().Context(), req)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusCreated, t)
}

// List returns the trip log. ?sort= picks the field, ?order=asc|desc the
// direction (newest first by default).
func (h *Handler) List(c echo.Context) error {
	desc := true
	switch c.QueryParam("order") {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return badRequest(c, "order must be asc or desc")
	}

	trips, err := h.svc.ListTrips(c.Request().Context(), c.QueryParam("sort"), desc)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, trips)
}

func (h *Handler) Get(c echo.Context) error {
	t, err := h.svc.GetTrip(c.Request().Context(), c.Param("tripId"))
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, stats)
}
