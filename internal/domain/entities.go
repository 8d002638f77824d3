package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus int

const (
	ItemAvailable ItemStatus = iota
	ItemStaged
	ItemSold
)

func (s ItemStatus) String() string {
	switch s {
	case ItemAvailable:
		return "available"
	case ItemStaged:
		return "staged"
	case ItemSold:
		return "sold"
	default:
		return "unknown"
	}
}

// Description is the human readable status shown in item summaries.
func (s ItemStatus) Description() string {
	switch s {
	case ItemAvailable:
		return "Item is available for auction"
	case ItemStaged:
		return "Item is currently staged for auction"
	case ItemSold:
		return "Item has been sold in auction"
	default:
		return "Unknown item status"
	}
}

func (s ItemStatus) Valid() bool {
	return s >= ItemAvailable && s <= ItemSold
}

type AuctionStatus int

const (
	AuctionCreated AuctionStatus = iota
	AuctionInProgress
	AuctionCalledSuccess
	AuctionCalledFail
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionCreated:
		return "created"
	case AuctionInProgress:
		return "in_progress"
	case AuctionCalledSuccess:
		return "called_success"
	case AuctionCalledFail:
		return "called_fail"
	default:
		return "unknown"
	}
}

func (s AuctionStatus) Description() string {
	switch s {
	case AuctionCreated:
		return "Auction was created with an item."
	case AuctionInProgress:
		return "Auction is currently in progress."
	case AuctionCalledSuccess:
		return "Auction has been called with a winning bid."
	case AuctionCalledFail:
		return "Auction has been called without a winning bid."
	default:
		return "Unknown auction status"
	}
}

func (s AuctionStatus) Valid() bool {
	return s >= AuctionCreated && s <= AuctionCalledFail
}

type UserRole int

const (
	RoleAuctioneer UserRole = iota
	RoleParticipant
)

func (r UserRole) String() string {
	switch r {
	case RoleAuctioneer:
		return "auctioneer"
	case RoleParticipant:
		return "participant"
	default:
		return "unknown"
	}
}

// Item is identified by its name.
type Item struct {
	Name          string
	ReservedPrice decimal.Decimal
	Status        ItemStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewItem(name string, reservedPrice decimal.Decimal, now time.Time) *Item {
	return &Item{
		Name:          name,
		ReservedPrice: reservedPrice,
		Status:        ItemAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (i *Item) Category() string { return CategoryItem }
func (i *Item) Key() string      { return i.Name }

func (i *Item) BeforeSave(now time.Time) {
	i.UpdatedAt = now
}

func (i *Item) Fields() Record {
	return Record{
		"name":           i.Name,
		"reserved_price": i.ReservedPrice.String(),
		"status":         int(i.Status),
		"created_at":     formatTime(i.CreatedAt),
		"updated_at":     formatTime(i.UpdatedAt),
	}
}

func ItemFromRecord(r Record) (*Item, error) {
	var (
		item Item
		err  error
	)
	item.Name = r.GetString("name")
	if item.ReservedPrice, err = r.GetDecimal("reserved_price"); err != nil {
		return nil, err
	}
	status, err := r.GetInt("status")
	if err != nil {
		return nil, err
	}
	item.Status = ItemStatus(status)
	if !item.Status.Valid() {
		return nil, fmt.Errorf("unknown item status %d", status)
	}
	if item.CreatedAt, err = r.GetTime("created_at"); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = r.GetTime("updated_at"); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateReservedPrice is only allowed while the item is not committed to an auction.
func (i *Item) UpdateReservedPrice(price decimal.Decimal) error {
	if i.Status != ItemAvailable {
		return NewViolation(MsgItemNotAvailable)
	}
	if !price.IsPositive() {
		return NewViolation(MsgInvalidReservedPrice)
	}
	i.ReservedPrice = price
	return nil
}

// Stage commits the item to a newly created auction.
func (i *Item) Stage() {
	i.Status = ItemStaged
}

// Release makes the item available for a new auction.
func (i *Item) Release() {
	i.Status = ItemAvailable
}

// Settle applies an auction outcome: Sold is terminal, otherwise the item
// goes back to Available.
func (i *Item) Settle(sold bool) {
	if sold {
		i.Status = ItemSold
		return
	}
	i.Release()
}

// Bid is an accepted offer on an auction. Bids are never edited.
type Bid struct {
	ID            string
	AuctionID     string
	ParticipantID string
	OfferPrice    decimal.Decimal
	SubmittedAt   time.Time
}

func NewBid(id, auctionID, participantID string, offerPrice decimal.Decimal, now time.Time) *Bid {
	return &Bid{
		ID:            id,
		AuctionID:     auctionID,
		ParticipantID: participantID,
		OfferPrice:    offerPrice,
		SubmittedAt:   now,
	}
}

func (b *Bid) Category() string { return CategoryBid }
func (b *Bid) Key() string      { return b.ID }

func (b *Bid) Fields() Record {
	return Record{
		"id":             b.ID,
		"auction_id":     b.AuctionID,
		"participant_id": b.ParticipantID,
		"offer_price":    b.OfferPrice.String(),
		"submitted_at":   formatTime(b.SubmittedAt),
	}
}

func BidFromRecord(r Record) (*Bid, error) {
	var (
		bid Bid
		err error
	)
	bid.ID = r.GetString("id")
	bid.AuctionID = r.GetString("auction_id")
	bid.ParticipantID = r.GetString("participant_id")
	if bid.OfferPrice, err = r.GetDecimal("offer_price"); err != nil {
		return nil, err
	}
	if bid.SubmittedAt, err = r.GetTime("submitted_at"); err != nil {
		return nil, err
	}
	return &bid, nil
}

// Auction sells one item. Its status is derived from the started/closed
// timestamps and the winning bid; it is never set directly.
type Auction struct {
	ID            string
	ItemName      string
	ReservedPrice decimal.Decimal
	HighestBidID  string
	WinningBidID  string
	CreatedAt     time.Time
	StartedAt     *time.Time
	ClosedAt      *time.Time

	version int64
}

// NewAuction captures the item's reserved price at creation time.
func NewAuction(id string, item *Item, now time.Time) *Auction {
	return &Auction{
		ID:            id,
		ItemName:      item.Name,
		ReservedPrice: item.ReservedPrice,
		CreatedAt:     now,
	}
}

func (a *Auction) Category() string { return CategoryAuction }
func (a *Auction) Key() string      { return a.ID }

func (a *Auction) Version() int64     { return a.version }
func (a *Auction) SetVersion(v int64) { a.version = v }

func (a *Auction) Status() AuctionStatus {
	switch {
	case a.ClosedAt != nil && a.WinningBidID != "":
		return AuctionCalledSuccess
	case a.ClosedAt != nil:
		return AuctionCalledFail
	case a.StartedAt != nil:
		return AuctionInProgress
	default:
		return AuctionCreated
	}
}

// Fields always writes the freshly derived status so that raw-record
// predicates can filter on it.
func (a *Auction) Fields() Record {
	return Record{
		"id":             a.ID,
		"item_name":      a.ItemName,
		"reserved_price": a.ReservedPrice.String(),
		"highest_bid_id": optionalString(a.HighestBidID),
		"winning_bid_id": optionalString(a.WinningBidID),
		"status":         int(a.Status()),
		"created_at":     formatTime(a.CreatedAt),
		"started_at":     optionalTime(a.StartedAt),
		"closed_at":      optionalTime(a.ClosedAt),
		"version":        a.version,
	}
}

// AuctionFromRecord ignores the stored status; it is recomputed from the timestamps.
func AuctionFromRecord(r Record) (*Auction, error) {
	var (
		auction Auction
		err     error
	)
	auction.ID = r.GetString("id")
	auction.ItemName = r.GetString("item_name")
	if auction.ReservedPrice, err = r.GetDecimal("reserved_price"); err != nil {
		return nil, err
	}
	auction.HighestBidID = r.GetOptionalString("highest_bid_id")
	auction.WinningBidID = r.GetOptionalString("winning_bid_id")
	if auction.CreatedAt, err = r.GetTime("created_at"); err != nil {
		return nil, err
	}
	if auction.StartedAt, err = r.GetOptionalTime("started_at"); err != nil {
		return nil, err
	}
	if auction.ClosedAt, err = r.GetOptionalTime("closed_at"); err != nil {
		return nil, err
	}
	if auction.version, err = r.GetInt64("version"); err != nil {
		return nil, err
	}
	return &auction, nil
}

// Start moves a Created auction to InProgress.
func (a *Auction) Start(now time.Time) error {
	if a.Status() != AuctionCreated {
		return NewViolation(MsgAuctionNotStartable)
	}
	a.StartedAt = &now
	return nil
}

// ValidateBid checks, in order, that the auction is live, the price is
// positive and that it strictly beats the current highest bid (nil if none).
func (a *Auction) ValidateBid(price decimal.Decimal, highest *Bid) error {
	if a.Status() != AuctionInProgress {
		return NewViolation(MsgAuctionNotLive)
	}
	if !price.IsPositive() {
		return NewViolation(MsgInvalidBidPrice)
	}
	if highest != nil && price.LessThanOrEqual(highest.OfferPrice) {
		return NewViolation(MsgBidTooLow)
	}
	return nil
}

// Close settles an InProgress auction against its highest bid and reports
// whether the captured reserved price was met.
func (a *Auction) Close(highest *Bid, now time.Time) (bool, error) {
	if a.Status() != AuctionInProgress {
		return false, NewViolation(MsgAuctionNotEndable)
	}
	if highest == nil || highest.ID != a.HighestBidID {
		return false, fmt.Errorf("%w: auction %s has no highest bid to settle", ErrIntegrity, a.ID)
	}

	sold := highest.OfferPrice.GreaterThanOrEqual(a.ReservedPrice)
	if sold {
		a.WinningBidID = highest.ID
	}
	a.ClosedAt = &now
	return sold, nil
}

// PrevailingBidID is the winning bid when settled successfully, else the highest bid.
func (a *Auction) PrevailingBidID() string {
	if a.WinningBidID != "" {
		return a.WinningBidID
	}
	return a.HighestBidID
}

// User is either an auctioneer or a participant; both share the user category.
type User struct {
	ID        string
	Role      UserRole
	CreatedAt time.Time
}

func NewUser(id string, role UserRole, now time.Time) *User {
	return &User{ID: id, Role: role, CreatedAt: now}
}

func (u *User) Category() string { return CategoryUser }
func (u *User) Key() string      { return u.ID }

func (u *User) Fields() Record {
	return Record{
		"id":         u.ID,
		"type":       int(u.Role),
		"created_at": formatTime(u.CreatedAt),
	}
}

func UserFromRecord(r Record) (*User, error) {
	var (
		user User
		err  error
	)
	user.ID = r.GetString("id")
	role, err := r.GetInt("type")
	if err != nil {
		return nil, err
	}
	user.Role = UserRole(role)
	if user.Role != RoleAuctioneer && user.Role != RoleParticipant {
		return nil, fmt.Errorf("unknown user type %d", role)
	}
	if user.CreatedAt, err = r.GetTime("created_at"); err != nil {
		return nil, err
	}
	return &user, nil
}
