package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, r *Result) map[string]interface{} {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestFailureShape(t *testing.T) {
	r := Failure(MsgItemExists)
	r.ItemName = "ignored"

	out := decode(t, r)
	assert.Equal(t, map[string]interface{}{
		"status": "error",
		"errors": []interface{}{MsgItemExists},
	}, out)
}

func TestSuccessShape(t *testing.T) {
	r := Success()
	r.AuctionID = "auction-1"

	out := decode(t, r)
	assert.Equal(t, map[string]interface{}{
		"status":     "success",
		"auction_id": "auction-1",
	}, out)
}

func TestSummaryShapeHasExplicitNulls(t *testing.T) {
	item := NewItem("widget", decimal.NewFromInt(100), time.Now())
	r := Success()
	r.Summary = &ItemSummary{Item: item.View()}

	out := decode(t, r)
	assert.Equal(t, "success", out["status"])
	assert.Contains(t, out, "auction")
	assert.Contains(t, out, "prevailing_bid")
	assert.Nil(t, out["auction"])
	assert.Nil(t, out["prevailing_bid"])

	itemOut := out["item"].(map[string]interface{})
	assert.Equal(t, "widget", itemOut["name"])
	assert.Equal(t, "100", itemOut["reserved_price"])
	assert.Equal(t, float64(ItemAvailable), itemOut["status_code"])
	assert.Equal(t, ItemAvailable.Description(), itemOut["status_name"])
}

func TestEmptyListIsRendered(t *testing.T) {
	r := Success()
	r.Items = []ItemView{}

	out := decode(t, r)
	assert.Equal(t, []interface{}{}, out["items"])
}
