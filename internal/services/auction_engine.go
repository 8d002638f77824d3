package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"auction-house/internal/domain"
	"auction-house/internal/repositories"
	"auction-house/pkg/logger"
	"auction-house/pkg/utils"

	"github.com/shopspring/decimal"
)

// AuctionEngine drives the auction state machine:
// Created -> InProgress -> CalledSuccess | CalledFail.
//
// Each operation reads the current state, validates, mutates and persists
// before returning. Rule violations come back as error Results and leave the
// store untouched; store failures and broken references are returned as Go
// errors. Concurrent writers to one auction are detected through the
// auction's version and reported as a retryable rule violation.
type AuctionEngine struct {
	repos *repositories.Repositories
	log   logger.Logger
	now   func() time.Time
}

func NewAuctionEngine(repos *repositories.Repositories, log logger.Logger) *AuctionEngine {
	return &AuctionEngine{
		repos: repos,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (e *AuctionEngine) Start(ctx context.Context, auction *domain.Auction) (*domain.Result, error) {
	before := *auction
	if err := auction.Start(e.now()); err != nil {
		return reject(err)
	}

	if err := e.repos.Auctions.Save(ctx, auction); err != nil {
		*auction = before
		return e.saveFailure(auction, err)
	}

	e.log.Info("Auction started", "auction_id", auction.ID, "item_name", auction.ItemName)
	result := domain.Success()
	result.AuctionID = auction.ID
	return result, nil
}

func (e *AuctionEngine) ProcessBid(ctx context.Context, auction *domain.Auction, price decimal.Decimal, participantID string) (*domain.Result, error) {
	// Liveness and price sign are checked before touching the current highest bid.
	if err := auction.ValidateBid(price, nil); err != nil {
		return reject(err)
	}

	highest, err := e.highestBid(ctx, auction)
	if err != nil {
		return nil, err
	}
	if err := auction.ValidateBid(price, highest); err != nil {
		return reject(err)
	}

	bid := domain.NewBid(utils.GenerateID("bid"), auction.ID, participantID, price, e.now())
	if err := e.repos.Bids.Save(ctx, bid); err != nil {
		return nil, err
	}

	before := *auction
	auction.HighestBidID = bid.ID
	if err := e.repos.Auctions.Save(ctx, auction); err != nil {
		*auction = before
		if errors.Is(err, domain.ErrVersionConflict) {
			// Another writer got there first; drop the bid we just wrote.
			if delErr := e.repos.Bids.Delete(ctx, bid); delErr != nil {
				e.log.Error("Failed to remove superseded bid", "bid_id", bid.ID, "error", delErr)
				return nil, delErr
			}
		}
		return e.saveFailure(auction, err)
	}

	e.log.Info("Bid accepted",
		"auction_id", auction.ID,
		"bid_id", bid.ID,
		"participant_id", participantID,
		"offer_price", price.String())

	result := domain.Success()
	result.BidID = bid.ID
	return result, nil
}

// End settles the auction against its highest bid. Ending a live auction
// that never received a bid is an integrity failure, not a rule violation.
func (e *AuctionEngine) End(ctx context.Context, auction *domain.Auction) (*domain.Result, error) {
	if auction.Status() != domain.AuctionInProgress {
		return domain.Failure(domain.MsgAuctionNotEndable), nil
	}

	item, ok, err := e.repos.Items.One(ctx, auction.ItemName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item %q of auction %s is missing", domain.ErrIntegrity, auction.ItemName, auction.ID)
	}

	highest, err := e.highestBid(ctx, auction)
	if err != nil {
		return nil, err
	}

	before := *auction
	sold, err := auction.Close(highest, e.now())
	if err != nil {
		return reject(err)
	}
	item.Settle(sold)

	if err := e.repos.Auctions.Save(ctx, auction); err != nil {
		*auction = before
		return e.saveFailure(auction, err)
	}
	if err := e.repos.Items.Save(ctx, item); err != nil {
		return nil, err
	}

	e.log.Info("Auction called",
		"auction_id", auction.ID,
		"item_name", item.Name,
		"status", auction.Status().String(),
		"highest_bid_id", auction.HighestBidID)

	result := domain.Success()
	result.AuctionID = auction.ID
	return result, nil
}

// BidsForAuction scans the bid category for every bid placed on auctionID,
// oldest first.
func (e *AuctionEngine) BidsForAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	bids, err := e.repos.Bids.All(ctx, bidsForAuction(auctionID))
	if err != nil {
		return nil, err
	}
	slices.SortFunc(bids, func(a, b *domain.Bid) int {
		return a.SubmittedAt.Compare(b.SubmittedAt)
	})
	return bids, nil
}

func (e *AuctionEngine) highestBid(ctx context.Context, auction *domain.Auction) (*domain.Bid, error) {
	if auction.HighestBidID == "" {
		return nil, nil
	}

	bid, ok, err := e.repos.Bids.One(ctx, auction.HighestBidID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: highest bid %s of auction %s is missing",
			domain.ErrIntegrity, auction.HighestBidID, auction.ID)
	}
	return bid, nil
}

func (e *AuctionEngine) saveFailure(auction *domain.Auction, err error) (*domain.Result, error) {
	if errors.Is(err, domain.ErrVersionConflict) {
		e.log.Warn("Concurrent auction update rejected", "auction_id", auction.ID, "error", err)
		return domain.Failure(domain.MsgAuctionModified), nil
	}
	return nil, err
}

// reject turns a rule violation into an error Result and passes anything
// else through as a failure of the operation.
func reject(err error) (*domain.Result, error) {
	if v, ok := domain.AsViolation(err); ok {
		return domain.FailureFrom(v), nil
	}
	return nil, err
}
