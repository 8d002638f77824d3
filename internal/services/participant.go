package services

import (
	"context"

	"auction-house/internal/domain"

	"github.com/shopspring/decimal"
)

// Participant browses live auctions and bids on them.
type Participant struct {
	member
}

// QueryLiveAuctions lists auctions in progress. With involvedOnly set, only
// auctions this participant has bid on are returned.
func (p *Participant) QueryLiveAuctions(ctx context.Context, involvedOnly bool) (*domain.Result, error) {
	repos := p.market.repos

	filter := auctionsWithStatus(statusIs(domain.AuctionInProgress))
	if involvedOnly {
		bids, err := repos.Bids.All(ctx, bidsByParticipant(p.ID()))
		if err != nil {
			return nil, err
		}

		involved := make(map[string]struct{}, len(bids))
		for _, bid := range bids {
			involved[bid.AuctionID] = struct{}{}
		}

		live := filter
		filter = func(r domain.Record) bool {
			_, ok := involved[r.GetString("id")]
			return ok && live(r)
		}
	}

	auctions, err := repos.Auctions.All(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := domain.Success()
	result.Auctions = auctionViews(auctions)
	return result, nil
}

func (p *Participant) SubmitBid(ctx context.Context, auctionID string, price decimal.Decimal) (*domain.Result, error) {
	auction, ok, err := p.market.repos.Auctions.One(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return domain.Failure(domain.MsgAuctionNotFound), nil
	}
	return p.market.engine.ProcessBid(ctx, auction, price, p.ID())
}
