package services

import (
	"context"
	"slices"
	"strings"

	"auction-house/internal/domain"
	"auction-house/pkg/utils"

	"github.com/shopspring/decimal"
)

// Auctioneer registers items and runs their auctions.
type Auctioneer struct {
	member
}

func (a *Auctioneer) RegisterItem(ctx context.Context, name string, reservedPrice decimal.Decimal) (*domain.Result, error) {
	repos := a.market.repos

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Failure(domain.MsgItemNameRequired), nil
	}
	if !reservedPrice.IsPositive() {
		return domain.Failure(domain.MsgInvalidReservedPrice), nil
	}

	_, exists, err := repos.Items.One(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return domain.Failure(domain.MsgItemExists), nil
	}

	item := domain.NewItem(name, reservedPrice, a.market.now())
	if err := repos.Items.Save(ctx, item); err != nil {
		return nil, err
	}

	a.market.log.Info("Item registered",
		"item_name", item.Name,
		"reserved_price", reservedPrice.String(),
		"auctioneer_id", a.ID())

	result := domain.Success()
	result.ItemName = item.Name
	return result, nil
}

// CreateAuction stages the item for a new auction. An item can only have one
// auction that has not failed.
func (a *Auctioneer) CreateAuction(ctx context.Context, itemName string) (*domain.Result, error) {
	repos := a.market.repos

	item, ok, err := repos.Items.One(ctx, itemName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgItemNotFound), nil
	}

	existing, err := repos.Auctions.All(ctx, auctionsForItem(itemName, notFailed))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return domain.Failure(domain.MsgAuctionExists), nil
	}

	auction := domain.NewAuction(utils.GenerateID("auction"), item, a.market.now())
	item.Stage()

	if err := repos.Items.Save(ctx, item); err != nil {
		return nil, err
	}
	if err := repos.Auctions.Save(ctx, auction); err != nil {
		return nil, err
	}

	a.market.log.Info("Auction created",
		"auction_id", auction.ID,
		"item_name", item.Name,
		"reserved_price", auction.ReservedPrice.String())

	result := domain.Success()
	result.AuctionID = auction.ID
	return result, nil
}

func (a *Auctioneer) StartAuction(ctx context.Context, auctionID string) (*domain.Result, error) {
	auction, ok, err := a.market.repos.Auctions.One(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgAuctionNotFound), nil
	}
	return a.market.engine.Start(ctx, auction)
}

func (a *Auctioneer) CallAuction(ctx context.Context, auctionID string) (*domain.Result, error) {
	auction, ok, err := a.market.repos.Auctions.One(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgAuctionNotFound), nil
	}
	return a.market.engine.End(ctx, auction)
}

// RegisterItemAndStartAuction chains register, create and start, stopping at
// the first failure. On success the result carries both the item name and
// the auction id.
func (a *Auctioneer) RegisterItemAndStartAuction(ctx context.Context, name string, reservedPrice decimal.Decimal) (*domain.Result, error) {
	registered, err := a.RegisterItem(ctx, name, reservedPrice)
	if err != nil || !registered.OK() {
		return registered, err
	}

	created, err := a.CreateAuction(ctx, registered.ItemName)
	if err != nil || !created.OK() {
		return created, err
	}

	started, err := a.StartAuction(ctx, created.AuctionID)
	if err != nil || !started.OK() {
		return started, err
	}

	started.ItemName = registered.ItemName
	return started, nil
}

func (a *Auctioneer) UpdateItemReservedPrice(ctx context.Context, itemName string, price decimal.Decimal) (*domain.Result, error) {
	repos := a.market.repos

	item, ok, err := repos.Items.One(ctx, itemName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgItemNotFound), nil
	}

	previous := item.ReservedPrice
	if err := item.UpdateReservedPrice(price); err != nil {
		return reject(err)
	}
	if err := repos.Items.Save(ctx, item); err != nil {
		return nil, err
	}

	a.market.log.Info("Reserved price updated",
		"item_name", item.Name,
		"previous", previous.String(),
		"reserved_price", price.String())

	result := domain.Success()
	result.ItemName = item.Name
	return result, nil
}

// UnstageItem withdraws a staged item whose auction has not started yet. The
// Created auction is deleted and the item becomes available again.
func (a *Auctioneer) UnstageItem(ctx context.Context, itemName string) (*domain.Result, error) {
	repos := a.market.repos

	item, ok, err := repos.Items.One(ctx, itemName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgItemNotFound), nil
	}
	if item.Status != domain.ItemStaged {
		return domain.Failure(domain.MsgItemNotStaged), nil
	}

	pending, err := repos.Auctions.All(ctx, auctionsForItem(itemName, statusIs(domain.AuctionCreated)))
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return domain.Failure(domain.MsgAuctionProgressed), nil
	}

	for _, auction := range pending {
		if err := repos.Auctions.Delete(ctx, auction); err != nil {
			return nil, err
		}
	}

	item.Release()
	if err := repos.Items.Save(ctx, item); err != nil {
		return nil, err
	}

	a.market.log.Info("Item unstaged", "item_name", item.Name, "auctions_removed", len(pending))

	result := domain.Success()
	result.ItemName = item.Name
	return result, nil
}

// QueryAllItems lists items by name, optionally restricted to one status.
func (a *Auctioneer) QueryAllItems(ctx context.Context, status *domain.ItemStatus) (*domain.Result, error) {
	var filter domain.Predicate
	if status != nil {
		want := int(*status)
		filter = func(r domain.Record) bool {
			got, err := r.GetInt("status")
			return err == nil && got == want
		}
	}

	items, err := a.market.repos.Items.All(ctx, filter)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(x, y *domain.Item) int {
		return strings.Compare(x.Name, y.Name)
	})

	result := domain.Success()
	result.Items = make([]domain.ItemView, 0, len(items))
	for _, item := range items {
		result.Items = append(result.Items, item.View())
	}
	return result, nil
}

// QueryAllAuctions lists auctions oldest first, optionally restricted to one status.
func (a *Auctioneer) QueryAllAuctions(ctx context.Context, status *domain.AuctionStatus) (*domain.Result, error) {
	var filter domain.Predicate
	if status != nil {
		filter = auctionsWithStatus(statusIs(*status))
	}

	auctions, err := a.market.repos.Auctions.All(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := domain.Success()
	result.Auctions = auctionViews(auctions)
	return result, nil
}

func (a *Auctioneer) QueryBidsForAuction(ctx context.Context, auctionID string) (*domain.Result, error) {
	_, ok, err := a.market.repos.Auctions.One(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgAuctionNotFound), nil
	}

	bids, err := a.market.engine.BidsForAuction(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	result := domain.Success()
	result.AuctionID = auctionID
	result.Bids = bidViews(bids)
	return result, nil
}
