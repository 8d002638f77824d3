package handlers

import (
	"net/http"

	"auction-house/internal/domain"

	"github.com/labstack/echo/v4"
)

func (h *MarketplaceHandler) RegisterItem(c echo.Context) error {
	var req RegisterItemRequest
	if failed := bind(c, &req); failed != nil {
		return c.JSON(http.StatusBadRequest, failed)
	}

	result, err := auctioneerFrom(c).RegisterItem(c.Request().Context(), req.Name, *req.ReservedPrice)
	return h.respond(c, http.StatusCreated, result, err)
}

func (h *MarketplaceHandler) RegisterItemAndStartAuction(c echo.Context) error {
	var req RegisterItemRequest
	if failed := bind(c, &req); failed != nil {
		return c.JSON(http.StatusBadRequest, failed)
	}

	result, err := auctioneerFrom(c).RegisterItemAndStartAuction(c.Request().Context(), req.Name, *req.ReservedPrice)
	return h.respond(c, http.StatusCreated, result, err)
}

func (h *MarketplaceHandler) UpdateItemReservedPrice(c echo.Context) error {
	var req UpdateReservedPriceRequest
	if failed := bind(c, &req); failed != nil {
		return c.JSON(http.StatusBadRequest, failed)
	}

	result, err := auctioneerFrom(c).UpdateItemReservedPrice(c.Request().Context(), c.Param("name"), *req.ReservedPrice)
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) UnstageItem(c echo.Context) error {
	result, err := auctioneerFrom(c).UnstageItem(c.Request().Context(), c.Param("name"))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) AuctioneerItemSummary(c echo.Context) error {
	result, err := auctioneerFrom(c).QueryItemSummary(c.Request().Context(), c.Param("name"))
	return h.respond(c, http.StatusOK, result, err)
}

// QueryAllItems accepts an optional numeric ?status= item status code.
func (h *MarketplaceHandler) QueryAllItems(c echo.Context) error {
	var filter *domain.ItemStatus
	if c.QueryParam("status") != "" {
		var code int
		if err := echo.QueryParamsBinder(c).Int("status", &code).BindError(); err != nil {
			return c.JSON(http.StatusBadRequest, domain.Failure("status must be an item status code."))
		}
		status := domain.ItemStatus(code)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, domain.Failure("status must be an item status code."))
		}
		filter = &status
	}

	result, err := auctioneerFrom(c).QueryAllItems(c.Request().Context(), filter)
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) CreateAuction(c echo.Context) error {
	var req CreateAuctionRequest
	if failed := bind(c, &req); failed != nil {
		return c.JSON(http.StatusBadRequest, failed)
	}

	result, err := auctioneerFrom(c).CreateAuction(c.Request().Context(), req.ItemName)
	return h.respond(c, http.StatusCreated, result, err)
}

// QueryAllAuctions accepts an optional numeric ?status= auction status code.
func (h *MarketplaceHandler) QueryAllAuctions(c echo.Context) error {
	var filter *domain.AuctionStatus
	if c.QueryParam("status") != "" {
		var code int
		if err := echo.QueryParamsBinder(c).Int("status", &code).BindError(); err != nil {
			return c.JSON(http.StatusBadRequest, domain.Failure("status must be an auction status code."))
		}
		status := domain.AuctionStatus(code)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, domain.Failure("status must be an auction status code."))
		}
		filter = &status
	}

	result, err := auctioneerFrom(c).QueryAllAuctions(c.Request().Context(), filter)
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) StartAuction(c echo.Context) error {
	result, err := auctioneerFrom(c).StartAuction(c.Request().Context(), c.Param("id"))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) CallAuction(c echo.Context) error {
	result, err := auctioneerFrom(c).CallAuction(c.Request().Context(), c.Param("id"))
	return h.respond(c, http.StatusOK, result, err)
}

func (h *MarketplaceHandler) QueryBidsForAuction(c echo.Context) error {
	result, err := auctioneerFrom(c).QueryBidsForAuction(c.Request().Context(), c.Param("id"))
	return h.respond(c, http.StatusOK, result, err)
}
