package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"auction-house/internal/domain"
	"auction-house/internal/infrastructure/memory"
	"auction-house/internal/services"
	"auction-house/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T, store domain.ObjectStore) *apiClient {
	t.Helper()
	e := echo.New()
	market := services.NewMarketplace(store, logger.NewNop())
	NewMarketplaceHandler(market, logger.NewNop()).Register(e.Group("/api/v1"))
	return &apiClient{t: t, e: e}
}

func (a *apiClient) do(method, path, body string) (int, map[string]interface{}) {
	a.t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/api/v1"+path, nil)
	} else {
		req = httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var payload map[string]interface{}
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	return rec.Code, payload
}

func (a *apiClient) register(role string) string {
	a.t.Helper()
	code, payload := a.do(http.MethodPost, "/users/"+role, "")
	require.Equal(a.t, http.StatusCreated, code)
	return payload["user_id"].(string)
}

func errorsOf(payload map[string]interface{}) []string {
	raw, _ := payload["errors"].([]interface{})
	messages := make([]string, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, m.(string))
	}
	return messages
}

func TestAuctionLifecycleOverHTTP(t *testing.T) {
	api := newAPI(t, memory.NewObjectStore())
	auctioneer := api.register("auctioneers")
	bidder := api.register("participants")

	code, payload := api.do(http.MethodPost, "/auctioneers/"+auctioneer+"/items/start",
		`{"name":"widget","reserved_price":100}`)
	require.Equal(t, http.StatusCreated, code, payload)
	assert.Equal(t, "success", payload["status"])
	assert.Equal(t, "widget", payload["item_name"])
	auctionID := payload["auction_id"].(string)

	code, payload = api.do(http.MethodPost, "/participants/"+bidder+"/auctions/"+auctionID+"/bids",
		`{"offer_price":"120.50"}`)
	require.Equal(t, http.StatusCreated, code, payload)
	bidID := payload["bid_id"].(string)

	code, payload = api.do(http.MethodPost, "/participants/"+bidder+"/auctions/"+auctionID+"/bids",
		`{"offer_price":120.5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "error", payload["status"])
	assert.Equal(t, []string{domain.MsgBidTooLow}, errorsOf(payload))

	code, payload = api.do(http.MethodGet, "/participants/"+bidder+"/auctions?involved=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["auctions"], 1)

	code, _ = api.do(http.MethodPost, "/auctioneers/"+auctioneer+"/auctions/"+auctionID+"/call", "")
	require.Equal(t, http.StatusOK, code)

	code, payload = api.do(http.MethodGet, "/participants/"+bidder+"/items/widget/summary", "")
	require.Equal(t, http.StatusOK, code)
	item := payload["item"].(map[string]interface{})
	assert.Equal(t, float64(domain.ItemSold), item["status_code"])
	auction := payload["auction"].(map[string]interface{})
	assert.Equal(t, bidID, auction["winning_bid_id"])
	prevailing := payload["prevailing_bid"].(map[string]interface{})
	assert.Equal(t, bidID, prevailing["id"])
	assert.Equal(t, bidder, prevailing["participant_id"])

	code, payload = api.do(http.MethodGet, "/auctioneers/"+auctioneer+"/auctions/"+auctionID+"/bids", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["bids"], 1)
}

func TestItemRoutes(t *testing.T) {
	api := newAPI(t, memory.NewObjectStore())
	auctioneer := api.register("auctioneers")
	base := "/auctioneers/" + auctioneer

	code, _ := api.do(http.MethodPost, base+"/items", `{"name":"widget","reserved_price":100}`)
	require.Equal(t, http.StatusCreated, code)

	code, payload := api.do(http.MethodGet, base+"/items/widget/summary", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, payload, "auction")
	assert.Nil(t, payload["auction"])
	assert.Nil(t, payload["prevailing_bid"])

	code, _ = api.do(http.MethodPut, base+"/items/widget/reserved-price", `{"reserved_price":80}`)
	require.Equal(t, http.StatusOK, code)

	code, payload = api.do(http.MethodPost, base+"/auctions", `{"item_name":"widget"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, payload["auction_id"])

	code, payload = api.do(http.MethodPut, base+"/items/widget/reserved-price", `{"reserved_price":60}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{domain.MsgItemNotAvailable}, errorsOf(payload))

	code, payload = api.do(http.MethodGet, base+"/items?status=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["items"], 1)

	code, payload = api.do(http.MethodGet, base+"/auctions?status=0", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["auctions"], 1)

	code, _ = api.do(http.MethodPost, base+"/items/widget/unstage", "")
	require.Equal(t, http.StatusOK, code)

	code, payload = api.do(http.MethodGet, base+"/auctions", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, payload["auctions"])
}

func TestRequestValidation(t *testing.T) {
	api := newAPI(t, memory.NewObjectStore())
	auctioneer := api.register("auctioneers")
	base := "/auctioneers/" + auctioneer

	code, payload := api.do(http.MethodPost, base+"/items", `{"reserved_price":100}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, []string{"name is required"}, errorsOf(payload))

	code, payload = api.do(http.MethodPost, base+"/items", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Len(t, errorsOf(payload), 2)

	code, _ = api.do(http.MethodPost, base+"/items", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, base+"/items?status=9", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodGet, base+"/auctions?status=abc", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, payload = api.do(http.MethodPost, base+"/items", `{"name":"widget","reserved_price":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{domain.MsgInvalidReservedPrice}, errorsOf(payload))
}

func TestUnknownOrMismatchedUser(t *testing.T) {
	api := newAPI(t, memory.NewObjectStore())
	participant := api.register("participants")

	code, payload := api.do(http.MethodGet, "/auctioneers/"+participant+"/auctions", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, []string{domain.MsgUserNotFound}, errorsOf(payload))

	code, _ = api.do(http.MethodGet, "/participants/user-missing/auctions", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, payload = api.do(http.MethodGet, "/users/participants", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, payload["users"], 1)

	code, payload = api.do(http.MethodGet, "/users/auctioneers", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, payload["users"])
}

type unavailableStore struct {
	*memory.ObjectStore
}

func (s unavailableStore) Get(ctx context.Context, category, key string) (domain.Record, bool, error) {
	return nil, false, fmt.Errorf("%w: get %s/%s: connection refused", domain.ErrStoreUnavailable, category, key)
}

type brokenStore struct {
	*memory.ObjectStore
}

func (s brokenStore) GetAll(ctx context.Context, category string, filter domain.Predicate) ([]domain.Record, error) {
	return nil, errors.New("boom")
}

func TestStoreFailuresMapToServerErrors(t *testing.T) {
	api := newAPI(t, unavailableStore{memory.NewObjectStore()})
	code, payload := api.do(http.MethodGet, "/participants/user-1/auctions", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", payload["status"])

	api = newAPI(t, brokenStore{memory.NewObjectStore()})
	code, _ = api.do(http.MethodGet, "/users/participants", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}
