package ticketing

import "github.com/noah-isme/eventku-checkout/internal/pricing"

// EventOffer is the purchasable event as known to checkout: unit price and
// remaining seat inventory. Read-only; the upstream API owns it.
type EventOffer struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Price          pricing.Money `json:"price"`
	AvailableSeats int           `json:"availableSeats"`
}

// Voucher is a fixed-nominal discount tied to a specific event. At most one
// voucher applies per transaction.
type Voucher struct {
	ID      int64         `json:"id"`
	Nominal pricing.Money `json:"nominal"`
	EventID int64         `json:"eventId"`
}

// Balances aggregates the user-owned redeemable amounts. Points and coupon are
// independent instruments.
type Balances struct {
	Points pricing.Money `json:"totalPoints"`
	Coupon pricing.Money `json:"totalCoupon"`
}

// CreateTransactionRequest is the transaction-creation payload. VoucherID is
// nullable; the upstream treats absence as "no voucher".
type CreateTransactionRequest struct {
	EventID       int64         `json:"eventId"`
	Quantity      int           `json:"quantity"`
	VoucherID     *int64        `json:"voucherId"`
	PointsToUse   pricing.Money `json:"pointsToUse"`
	CouponNominal pricing.Money `json:"couponNominal"`
}

// CreatedTransaction is the minimal success response of create-transaction.
type CreatedTransaction struct {
	ID int64 `json:"id"`
}

// Transaction is a backend-owned transaction record as surfaced on the
// payment page.
type Transaction struct {
	ID         int64         `json:"id"`
	EventID    int64         `json:"eventId"`
	Quantity   int           `json:"quantity"`
	TotalPrice pricing.Money `json:"totalPrice"`
	Status     string        `json:"status"`
}

// eventWire mirrors the loosely-typed upstream event payload: every field is
// optional and defaults are applied at this boundary.
type eventWire struct {
	ID             *int64         `json:"id"`
	Name           *string        `json:"name"`
	Price          *pricing.Money `json:"price"`
	AvailableSeats *int           `json:"availableSeats"`
}

func (w eventWire) toOffer() EventOffer {
	var offer EventOffer
	if w.ID != nil {
		offer.ID = *w.ID
	}
	if w.Name != nil {
		offer.Name = *w.Name
	}
	if w.Price != nil && *w.Price > 0 {
		offer.Price = *w.Price
	}
	if w.AvailableSeats != nil && *w.AvailableSeats > 0 {
		offer.AvailableSeats = *w.AvailableSeats
	}
	return offer
}
