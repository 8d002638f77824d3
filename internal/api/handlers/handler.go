package handlers

import (
	"errors"
	"net/http"
	"sort"

	"auction-house/internal/domain"
	"auction-house/internal/services"
	"auction-house/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
)

const (
	auctioneerKey  = "auctioneer"
	participantKey = "participant"
)

// MarketplaceHandler exposes the role services over HTTP. Every response body
// is a result envelope: {"status":"success", ...} or {"status":"error","errors":[...]}.
type MarketplaceHandler struct {
	market *services.Marketplace
	log    logger.Logger
}

func NewMarketplaceHandler(market *services.Marketplace, log logger.Logger) *MarketplaceHandler {
	return &MarketplaceHandler{market: market, log: log}
}

// Register mounts every route on g.
func (h *MarketplaceHandler) Register(g *echo.Group) {
	users := g.Group("/users")
	users.POST("/auctioneers", h.RegisterAuctioneer)
	users.GET("/auctioneers", h.ListAuctioneers)
	users.POST("/participants", h.RegisterParticipant)
	users.GET("/participants", h.ListParticipants)

	auctioneers := g.Group("/auctioneers/:user_id", h.requireUser(domain.RoleAuctioneer))
	auctioneers.POST("/items", h.RegisterItem)
	auctioneers.POST("/items/start", h.RegisterItemAndStartAuction)
	auctioneers.GET("/items", h.QueryAllItems)
	auctioneers.PUT("/items/:name/reserved-price", h.UpdateItemReservedPrice)
	auctioneers.POST("/items/:name/unstage", h.UnstageItem)
	auctioneers.GET("/items/:name/summary", h.AuctioneerItemSummary)
	auctioneers.POST("/auctions", h.CreateAuction)
	auctioneers.GET("/auctions", h.QueryAllAuctions)
	auctioneers.POST("/auctions/:id/start", h.StartAuction)
	auctioneers.POST("/auctions/:id/call", h.CallAuction)
	auctioneers.GET("/auctions/:id/bids", h.QueryBidsForAuction)

	participants := g.Group("/participants/:user_id", h.requireUser(domain.RoleParticipant))
	participants.GET("/auctions", h.QueryLiveAuctions)
	participants.POST("/auctions/:id/bids", h.SubmitBid)
	participants.GET("/items/:name/summary", h.ParticipantItemSummary)
}

// requireUser resolves :user_id to a user of the given role and stores the
// matching role service on the context.
func (h *MarketplaceHandler) requireUser(role domain.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := c.Param("user_id")
			user, ok, err := h.market.FindUser(c.Request().Context(), userID, role)
			if err != nil {
				return h.failure(c, err)
			}
			if !ok {
				return c.JSON(http.StatusNotFound, domain.Failure(domain.MsgUserNotFound))
			}

			switch role {
			case domain.RoleAuctioneer:
				c.Set(auctioneerKey, h.market.Auctioneer(user))
			case domain.RoleParticipant:
				c.Set(participantKey, h.market.Participant(user))
			}
			return next(c)
		}
	}
}

func auctioneerFrom(c echo.Context) *services.Auctioneer {
	return c.Get(auctioneerKey).(*services.Auctioneer)
}

func participantFrom(c echo.Context) *services.Participant {
	return c.Get(participantKey).(*services.Participant)
}

// bind decodes the body into req and runs its validation rules.
func bind(c echo.Context, req validation.Validatable) *domain.Result {
	if err := c.Bind(req); err != nil {
		return domain.Failure("Invalid request body.")
	}
	if err := req.Validate(); err != nil {
		return domain.Failure(validationMessages(err)...)
	}
	return nil
}

func validationMessages(err error) []string {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fieldErrs[field].Error())
	}
	return messages
}

// respond writes a service result. Rule violations are 422.
func (h *MarketplaceHandler) respond(c echo.Context, successCode int, result *domain.Result, err error) error {
	if err != nil {
		return h.failure(c, err)
	}
	if !result.OK() {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	return c.JSON(successCode, result)
}

func (h *MarketplaceHandler) failure(c echo.Context, err error) error {
	req := c.Request()
	h.log.Error("Request failed",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		"error", err)

	if errors.Is(err, domain.ErrStoreUnavailable) {
		return c.JSON(http.StatusServiceUnavailable, domain.Failure("Object store is unavailable, please retry later."))
	}
	return c.JSON(http.StatusInternalServerError, domain.Failure("Internal server error."))
}
