package geocode

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"tow-trip-planner/internal/models"
)

// Handler exposes geocoding to the UI.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/geocode", h.Geocode)
	g.GET("/geocode/suggest", h.Suggest)
	g.GET("/geocode/reverse", h.Reverse)
}

// Geocode resolves ?q= to a coordinate.
func (h *Handler) Geocode(c echo.Context) error {
	q := c.QueryParam("q")
	coord, err := h.svc.Geocode(c.Request().Context(), q)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, models.Place{DisplayName: q, Coordinate: coord})
}

// Suggest returns autocomplete candidates for ?q=, limited by ?limit=.
func (h *Handler) Suggest(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "limit must be a non-negative integer", Kind: models.KindInvalidInput})
		}
		limit = n
	}

	places, err := h.svc.Suggest(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, places)
}

// Reverse resolves ?lat=&lon= to an address.
func (h *Handler) Reverse(c echo.Context) error {
	coord, err := models.ParseCoordinate(c.QueryParam("lat") + "," + c.QueryParam("lon"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse(err))
	}

	place, err := h.svc.Reverse(c.Request().Context(), coord)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, place)
}
