package handler

import (
	"net/http"

	"storefront-order-service/internal/service"

	"github.com/labstack/echo/v4"
)

type AnalysisHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalysisHandler(analyticsService service.AnalyticsService) *AnalysisHandler {
	return &AnalysisHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalysisHandler) Summary(c echo.Context) error {
	ctx := c.Request().Context()

	summary, err := h.analyticsService.Summary(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}
