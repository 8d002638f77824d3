package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"auction-house/internal/domain"
	"auction-house/internal/infrastructure/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagedOneMissing(t *testing.T) {
	repos := New(memory.NewObjectStore())

	item, ok, err := repos.Items.One(context.Background(), "nothing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, item)
}

func TestManagedSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	repos := New(memory.NewObjectStore())

	item := domain.NewItem("widget", decimal.RequireFromString("99.95"), time.Now())
	require.NoError(t, repos.Items.Save(ctx, item))

	loaded, ok, err := repos.Items.One(ctx, "widget")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.Fields(), loaded.Fields())

	bid := domain.NewBid("bid-1", "auction-1", "user-1", decimal.NewFromInt(10), time.Now())
	require.NoError(t, repos.Bids.Save(ctx, bid))
	loadedBid, ok, err := repos.Bids.One(ctx, "bid-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bid.Fields(), loadedBid.Fields())
}

func TestManagedSaveRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repos := New(memory.NewObjectStore())

	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	item := domain.NewItem("widget", decimal.NewFromInt(1), created)
	require.NoError(t, repos.Items.Save(ctx, item))

	assert.Equal(t, created, item.CreatedAt)
	assert.True(t, item.UpdatedAt.After(created))
}

func TestManagedAllFiltersOnRawRecords(t *testing.T) {
	ctx := context.Background()
	repos := New(memory.NewObjectStore())

	for _, name := range []string{"a", "b", "c"} {
		item := domain.NewItem(name, decimal.NewFromInt(1), time.Now())
		if name == "b" {
			item.Stage()
		}
		require.NoError(t, repos.Items.Save(ctx, item))
	}

	all, err := repos.Items.All(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	staged, err := repos.Items.All(ctx, func(r domain.Record) bool {
		status, err := r.GetInt("status")
		return err == nil && domain.ItemStatus(status) == domain.ItemStaged
	})
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, "b", staged[0].Name)
}

func TestManagedDelete(t *testing.T) {
	ctx := context.Background()
	repos := New(memory.NewObjectStore())

	user := domain.NewUser("user-1", domain.RoleAuctioneer, time.Now())
	require.NoError(t, repos.Users.Save(ctx, user))
	require.NoError(t, repos.Users.Delete(ctx, user))

	_, ok, err := repos.Users.One(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagedVersionedSave(t *testing.T) {
	ctx := context.Background()
	repos := New(memory.NewObjectStore())

	item := domain.NewItem("widget", decimal.NewFromInt(1), time.Now())
	auction := domain.NewAuction("auction-1", item, time.Now())
	require.NoError(t, repos.Auctions.Save(ctx, auction))
	assert.Equal(t, int64(1), auction.Version())

	first, _, err := repos.Auctions.One(ctx, "auction-1")
	require.NoError(t, err)
	second, _, err := repos.Auctions.One(ctx, "auction-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Version())

	require.NoError(t, first.Start(time.Now()))
	require.NoError(t, repos.Auctions.Save(ctx, first))

	require.NoError(t, second.Start(time.Now()))
	err = repos.Auctions.Save(ctx, second)
	assert.True(t, errors.Is(err, domain.ErrVersionConflict))
	assert.Equal(t, int64(1), second.Version())

	stored, _, err := repos.Auctions.One(ctx, "auction-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version())
	assert.Equal(t, first.StartedAt.UTC().Format(domain.TimeLayout), stored.StartedAt.UTC().Format(domain.TimeLayout))
}

func TestManagedCorruptRecordIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	store := memory.NewObjectStore()
	repos := New(store)

	require.NoError(t, store.Put(ctx, domain.CategoryItem, "broken", domain.Record{"name": "broken"}))

	_, _, err := repos.Items.One(ctx, "broken")
	assert.True(t, errors.Is(err, domain.ErrIntegrity))

	_, err = repos.Items.All(ctx, nil)
	assert.True(t, errors.Is(err, domain.ErrIntegrity))
}
