package repositories

import (
	"auction-house/internal/domain"
)

// Repositories bundles the managed collections of every entity type.
type Repositories struct {
	Items    *Managed[*domain.Item]
	Auctions *Managed[*domain.Auction]
	Bids     *Managed[*domain.Bid]
	Users    *Managed[*domain.User]
}

func New(store domain.ObjectStore) *Repositories {
	return &Repositories{
		Items:    NewManaged(store, domain.CategoryItem, domain.ItemFromRecord),
		Auctions: NewManaged(store, domain.CategoryAuction, domain.AuctionFromRecord),
		Bids:     NewManaged(store, domain.CategoryBid, domain.BidFromRecord),
		Users:    NewManaged(store, domain.CategoryUser, domain.UserFromRecord),
	}
}
