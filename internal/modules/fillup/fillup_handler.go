package fillup

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"tow-trip-planner/internal/models"
)

type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/fill-ups", h.Add)
	g.GET("/fill-ups", h.List)
	g.GET("/fill-ups/stats", h.Statistics)
	g.GET("/fill-ups/:fillUpId", h.Get)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: msg, Kind: models.KindInvalidInput})
}

func (h *Handler) Add(c echo.Context) error {
	var req models.AddFillUpRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	f, err := h.svc.AddFillUp(c.Request().Context(), req)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusCreated, f)
}

// List returns the log oldest first.
func (h *Handler) List(c echo.Context) error {
	entries, err := h.svc.ListFillUps(c.Request().Context())
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) Get(c echo.Context) error {
	f, err := h.svc.GetFillUp(c.Request().Context(), c.Param("fillUpId"))
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context())
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, stats)
}
