package domain

import (
	"errors"
)

var (
	ErrStoreUnavailable = errors.New("object store unavailable")
	ErrIntegrity        = errors.New("integrity violation")
	ErrVersionConflict  = errors.New("version conflict")
)

// Rule violation messages surfaced to callers.
const (
	MsgItemExists           = "Item already exists."
	MsgItemNotFound         = "Item does not exist."
	MsgItemNameRequired     = "Item name is required."
	MsgInvalidReservedPrice = "Reserved price must be greater than zero."
	MsgItemNotAvailable     = "You cannot change the reserved price of an item that is currently staged for auction or was sold already."
	MsgItemNotStaged        = "Item is not staged for auction."
	MsgAuctionProgressed    = "Auction for this item already progressed, and cannot unstage the item at this time."
	MsgAuctionExists        = "Auction already exists for this item."
	MsgAuctionNotFound      = "This auction does not exist."
	MsgAuctionNotStartable  = "This auction cannot be started because it is either already in progress or closed already."
	MsgAuctionNotEndable    = "This auction cannot be ended because it is currently not in progress."
	MsgAuctionNotLive       = "This auction is currently not in progress."
	MsgInvalidBidPrice      = "Not a valid bid price for submission."
	MsgBidTooLow            = "Bid must be higher than the current highest bid."
	MsgAuctionModified      = "This auction was modified by another request, please retry."
	MsgUserNotFound         = "User does not exist."
)

// Violation is an expected business-rule failure. It never mutates state and
// is reported to callers as an error Result rather than a Go error.
type Violation struct {
	Messages []string
}

func NewViolation(messages ...string) *Violation {
	return &Violation{Messages: messages}
}

func (v *Violation) Error() string {
	if len(v.Messages) == 0 {
		return "rule violation"
	}
	return v.Messages[0]
}

// AsViolation unwraps err into a *Violation when it is one.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
