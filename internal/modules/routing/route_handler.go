package routing

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"tow-trip-planner/internal/models"
)

type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/route", h.GetRoute)
}

// GetRoute answers ?from=lat,lon&to=lat,lon. ?elevation=true adds ascent
// and descent.
func (h *Handler) GetRoute(c echo.Context) error {
	from, err := models.ParseCoordinate(c.QueryParam("from"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse(err))
	}
	to, err := models.ParseCoordinate(c.QueryParam("to"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse(err))
	}

	withElevation, _ := strconv.ParseBool(c.QueryParam("elevation"))

	ctx := c.Request().Context()
	var route *models.RouteResult
	if withElevation {
		route, err = h.svc.RouteWithProfile(ctx, from, to)
	} else {
		route, err = h.svc.Route(ctx, from, to)
	}
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}
	return c.JSON(http.StatusOK, route)
}
