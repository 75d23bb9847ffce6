package mpg

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"tow-trip-planner/internal/models"
)

// Handler serves the standalone MPG estimate. The estimator is pure, so
// the handler needs no service.
type Handler struct {
	validate *validator.Validate
}

func NewHandler() *Handler {
	return &Handler{validate: validator.New()}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/mpg/estimate", h.Estimate)
}

func (h *Handler) Estimate(c echo.Context) error {
	var req models.EstimateMPGRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body", Kind: models.KindInvalidInput})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error(), Kind: models.KindInvalidInput})
	}

	estimate, err := Estimate(req.Vehicle, req.Hint)
	if err != nil {
		return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
	}

	resp := models.EstimateMPGResponse{EstimatedMPG: estimate}
	if req.TankGallons > 0 {
		miles, err := Range(req.Vehicle, req.Hint, req.TankGallons)
		if err != nil {
			return c.JSON(models.HTTPStatus(err), models.NewErrorResponse(err))
		}
		resp.RangeMiles = &miles
	}
	return c.JSON(http.StatusOK, resp)
}
