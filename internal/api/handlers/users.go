package handlers

import (
	"net/http"

	"auction-house/internal/domain"

	"github.com/labstack/echo/v4"
)

func (h *MarketplaceHandler) RegisterAuctioneer(c echo.Context) error {
	return h.registerUser(c, domain.RoleAuctioneer)
}

func (h *MarketplaceHandler) RegisterParticipant(c echo.Context) error {
	return h.registerUser(c, domain.RoleParticipant)
}

func (h *MarketplaceHandler) ListAuctioneers(c echo.Context) error {
	return h.listUsers(c, domain.RoleAuctioneer)
}

func (h *MarketplaceHandler) ListParticipants(c echo.Context) error {
	return h.listUsers(c, domain.RoleParticipant)
}

func (h *MarketplaceHandler) registerUser(c echo.Context, role domain.UserRole) error {
	user, err := h.market.RegisterUser(c.Request().Context(), role)
	if err != nil {
		return h.failure(c, err)
	}

	result := domain.Success()
	result.UserID = user.ID
	return c.JSON(http.StatusCreated, result)
}

func (h *MarketplaceHandler) listUsers(c echo.Context, role domain.UserRole) error {
	users, err := h.market.Users(c.Request().Context(), role)
	if err != nil {
		return h.failure(c, err)
	}

	result := domain.Success()
	result.Users = make([]domain.UserView, 0, len(users))
	for _, u := range users {
		result.Users = append(result.Users, u.View())
	}
	return c.JSON(http.StatusOK, result)
}
