package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

type ItemView struct {
	Name          string          `json:"name"`
	ReservedPrice decimal.Decimal `json:"reserved_price"`
	StatusCode    ItemStatus      `json:"status_code"`
	StatusName    string          `json:"status_name"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AuctionView struct {
	ID            string          `json:"id"`
	ItemName      string          `json:"item_name"`
	ReservedPrice decimal.Decimal `json:"reserved_price"`
	StatusCode    AuctionStatus   `json:"status_code"`
	StatusName    string          `json:"status_name"`
	HighestBidID  *string         `json:"highest_bid_id"`
	WinningBidID  *string         `json:"winning_bid_id"`
	CreatedAt     time.Time       `json:"created_at"`
	StartedAt     *time.Time      `json:"started_at"`
	ClosedAt      *time.Time      `json:"closed_at"`
}

type BidView struct {
	ID            string          `json:"id"`
	AuctionID     string          `json:"auction_id"`
	OfferPrice    decimal.Decimal `json:"offer_price"`
	ParticipantID string          `json:"participant_id"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

type UserView struct {
	ID        string    `json:"id"`
	Type      UserRole  `json:"type"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Item) View() ItemView {
	return ItemView{
		Name:          i.Name,
		ReservedPrice: i.ReservedPrice,
		StatusCode:    i.Status,
		StatusName:    i.Status.Description(),
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func (a *Auction) View() AuctionView {
	status := a.Status()
	return AuctionView{
		ID:            a.ID,
		ItemName:      a.ItemName,
		ReservedPrice: a.ReservedPrice,
		StatusCode:    status,
		StatusName:    status.Description(),
		HighestBidID:  nullable(a.HighestBidID),
		WinningBidID:  nullable(a.WinningBidID),
		CreatedAt:     a.CreatedAt,
		StartedAt:     a.StartedAt,
		ClosedAt:      a.ClosedAt,
	}
}

func (b *Bid) View() BidView {
	return BidView{
		ID:            b.ID,
		AuctionID:     b.AuctionID,
		OfferPrice:    b.OfferPrice,
		ParticipantID: b.ParticipantID,
		SubmittedAt:   b.SubmittedAt,
	}
}

func (u *User) View() UserView {
	return UserView{ID: u.ID, Type: u.Role, Role: u.Role.String(), CreatedAt: u.CreatedAt}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ItemSummary joins an item with its current auction and prevailing bid.
// Auction and PrevailingBid are nil when not applicable.
type ItemSummary struct {
	Item          ItemView
	Auction       *AuctionView
	PrevailingBid *BidView
}

// Result is the uniform outcome of every role operation. On failure only
// Status and Errors are meaningful; on success the populated payload fields
// are emitted next to the status.
type Result struct {
	Status ResultStatus
	Errors []string

	ItemName  string
	AuctionID string
	BidID     string
	UserID    string

	Summary  *ItemSummary
	Items    []ItemView
	Auctions []AuctionView
	Bids     []BidView
	Users    []UserView
}

func Success() *Result {
	return &Result{Status: ResultSuccess}
}

func Failure(messages ...string) *Result {
	return &Result{Status: ResultError, Errors: messages}
}

// FailureFrom converts a rule violation into an error result.
func FailureFrom(v *Violation) *Result {
	return Failure(v.Messages...)
}

func (r *Result) OK() bool {
	return r.Status == ResultSuccess
}

func (r *Result) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"status": r.Status}
	if !r.OK() {
		errs := r.Errors
		if errs == nil {
			errs = []string{}
		}
		out["errors"] = errs
		return json.Marshal(out)
	}

	if r.ItemName != "" {
		out["item_name"] = r.ItemName
	}
	if r.AuctionID != "" {
		out["auction_id"] = r.AuctionID
	}
	if r.BidID != "" {
		out["bid_id"] = r.BidID
	}
	if r.UserID != "" {
		out["user_id"] = r.UserID
	}
	if r.Summary != nil {
		out["item"] = r.Summary.Item
		out["auction"] = r.Summary.Auction
		out["prevailing_bid"] = r.Summary.PrevailingBid
	}
	if r.Items != nil {
		out["items"] = r.Items
	}
	if r.Auctions != nil {
		out["auctions"] = r.Auctions
	}
	if r.Bids != nil {
		out["bids"] = r.Bids
	}
	if r.Users != nil {
		out["users"] = r.Users
	}
	return json.Marshal(out)
}
