// handlers_ratecard.go - Rate card read and export handlers
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrier-rates/backend/internal/export"
)

// RateCardHandlerImpl implements the RateCardHandler interface
type RateCardHandlerImpl struct {
	svc ImportService
}

// NewRateCardHandler creates a new rate card handler instance
func NewRateCardHandler(svc ImportService) RateCardHandler {
	return &RateCardHandlerImpl{svc: svc}
}

// HandleGetRateCard returns a rate card with its records
func (h *RateCardHandlerImpl) HandleGetRateCard(c echo.Context) error {
	id := c.Param("id")
	card, err := h.svc.GetRateCard(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "rate card", id)
	}
	return c.JSON(http.StatusOK, card)
}

// HandleListRateCards lists a template's rate cards without records
func (h *RateCardHandlerImpl) HandleListRateCards(c echo.Context) error {
	id := c.Param("id")
	limit, err := parseLimit(c.QueryParam("limit"))
	if err != nil {
		return err
	}

	cards, err := h.svc.ListRateCards(c.Request().Context(), id, limit)
	if err != nil {
		return serviceError(err, "rate card", id)
	}
	return c.JSON(http.StatusOK, cards)
}

// HandleExportRateCard downloads a rate card as CSV or MessagePack
func (h *RateCardHandlerImpl) HandleExportRateCard(c echo.Context) error {
	id := c.Param("id")
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return NewBadRequestError("unsupported export format", err)
	}

	card, err := h.svc.GetRateCard(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "rate card", id)
	}

	data, err := export.Bytes(card, format)
	if err != nil {
		return NewInternalError("failed to encode rate card", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("rate-card-%s.%s", card.ID, format)))
	return c.Blob(http.StatusOK, format.ContentType(), data)
}
