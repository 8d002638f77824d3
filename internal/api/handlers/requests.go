package handlers

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// RegisterItemRequest is shared by item registration and the
// register-and-start shortcut.
type RegisterItemRequest struct {
	Name          string           `json:"name"`
	ReservedPrice *decimal.Decimal `json:"reserved_price"`
}

func (r RegisterItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, 255),
		),
		validation.Field(&r.ReservedPrice,
			validation.Required.Error("reserved_price is required"),
		),
	)
}

type UpdateReservedPriceRequest struct {
	ReservedPrice *decimal.Decimal `json:"reserved_price"`
}

func (r UpdateReservedPriceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ReservedPrice, validation.Required.Error("reserved_price is required")),
	)
}

type CreateAuctionRequest struct {
	ItemName string `json:"item_name"`
}

func (r CreateAuctionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ItemName, validation.Required.Error("item_name is required")),
	)
}

type SubmitBidRequest struct {
	OfferPrice *decimal.Decimal `json:"offer_price"`
}

func (r SubmitBidRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OfferPrice, validation.Required.Error("offer_price is required")),
	)
}
