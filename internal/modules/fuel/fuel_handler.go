package fuel

import (
	"net/http"

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
	g.GET("/fuel-price/:fuelType", h.GetPrice)
}

// GetPrice always answers 200 for a known fuel type; the source field
// tells the UI whether the price is live.
func (h *Handler) GetPrice(c echo.Context) error {
	fuelType := models.FuelType(c.Param("fuelType"))
	if fuelType != models.FuelGas && fuelType != models.FuelDiesel {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "fuel type must be gas or diesel", Kind: models.KindInvalidInput})
	}
	return c.JSON(http.StatusOK, h.svc.CurrentPrice(c.Request().Context(), fuelType))
}
