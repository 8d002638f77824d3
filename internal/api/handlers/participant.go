package handlers

import (
	"net/http"

	"auction-house/internal/domain"

	"github.com/labstack/echo/v4"
)

// QueryLiveAuctions accepts ?involved=true to list only auctions the
// participant has bid on.
func (h *MarketplaceHandler) QueryLiveAuctions(c echo.Context) error {
	var involved bool
	if err := echo.QueryParamsBinder(c).Bool("involved", &involved).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, domain.Failure("involved must be true or false."))
	}

	result, err := participantFrom(c).QueryLiveAuctions(c.Request().Context(), involved)
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) SubmitBid(c echo.Context) error {
	var req SubmitBidRequest
	if failed := bind(c, &req); failed != nil {
		return c.JSON(http.StatusBadRequest, failed)
	}

	result, err := participantFrom(c).SubmitBid(c.Request().Context(), c.Param("id"), *req.OfferPrice)
	return h.respond(c, http.StatusCreated, result, err)
}

func (h *MarketplaceHandler) ParticipantItemSummary(c echo.Context) error {
	result, err := participantFrom(c).QueryItemSummary(c.Request().Context(), c.Param("name"))
	return h.respond(c, http.StatusOK, result, err)
}
