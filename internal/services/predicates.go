package services

import (
	"auction-house/internal/domain"
)

func recordAuctionStatus(r domain.Record) (domain.AuctionStatus, bool) {
	status, err := r.GetInt("status")
	if err != nil {
		return 0, false
	}
	return domain.AuctionStatus(status), true
}

func auctionsWithStatus(keep func(domain.AuctionStatus) bool) domain.Predicate {
	return func(r domain.Record) bool {
		status, ok := recordAuctionStatus(r)
		return ok && keep(status)
	}
}

func auctionsForItem(itemName string, keep func(domain.AuctionStatus) bool) domain.Predicate {
	withStatus := auctionsWithStatus(keep)
	return func(r domain.Record) bool {
		return r.GetString("item_name") == itemName && withStatus(r)
	}
}

func notFailed(s domain.AuctionStatus) bool {
	return s != domain.AuctionCalledFail
}

func statusIs(want domain.AuctionStatus) func(domain.AuctionStatus) bool {
	return func(s domain.AuctionStatus) bool { return s == want }
}

func bidsForAuction(auctionID string) domain.Predicate {
	return func(r domain.Record) bool {
		return r.GetString("auction_id") == auctionID
	}
}

func bidsByParticipant(participantID string) domain.Predicate {
	return func(r domain.Record) bool {
		return r.GetString("participant_id") == participantID
	}
}
