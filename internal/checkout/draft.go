package checkout

import (
	"github.com/noah-isme/eventku-checkout/internal/pricing"
	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

// Draft is the in-progress, unsubmitted purchase selection. It is owned by a
// single checkout session and discarded on navigation or successful
// submission; the server-assigned transaction supersedes it.
type Draft struct {
	EventID     int64         `json:"eventId" validate:"required,gt=0"`
	Quantity    int           `json:"quantity" validate:"required,min=1"`
	VoucherID   *int64        `json:"voucherId"`
	PointsToUse pricing.Money `json:"pointsToUse" validate:"min=0"`
	CouponToUse pricing.Money `json:"couponToUse" validate:"min=0"`
}

// NewDraft seeds a draft for the given event: one ticket, no voucher, zero
// spends.
func NewDraft(eventID int64) *Draft {
	return &Draft{EventID: eventID, Quantity: 1}
}

// SetQuantity stores the raw quantity. It is deliberately not clamped: the
// form keeps the entered value and validation reports it instead, matching
// the seat ceiling being advisory client-side.
func (d *Draft) SetQuantity(q int) {
	d.Quantity = q
}

// UsePoints accepts a points spend clamped to [0, balance] at the edit
// boundary, so the field never holds an over-limit value. Returns the
// accepted amount.
func (d *Draft) UsePoints(raw, balance pricing.Money) pricing.Money {
	d.PointsToUse = pricing.ClampSpend(raw, balance)
	return d.PointsToUse
}

// UseCoupon behaves like UsePoints for the coupon instrument. The two clamp
// independently.
func (d *Draft) UseCoupon(raw, balance pricing.Money) pricing.Money {
	d.CouponToUse = pricing.ClampSpend(raw, balance)
	return d.CouponToUse
}

// SelectVoucher records the chosen voucher, or clears it when nil.
func (d *Draft) SelectVoucher(id *int64) {
	d.VoucherID = id
}

// Breakdown recomputes the pricing summary for the current draft against the
// supplied offer, vouchers and balances. Call it after every edit; it is pure
// and cheap, so no caching or debouncing applies.
func (d *Draft) Breakdown(offer ticketing.EventOffer, vouchers []ticketing.Voucher, balances ticketing.Balances) pricing.Breakdown {
	return pricing.Compute(pricing.Inputs{
		UnitPrice:      offer.Price,
		Quantity:       d.Quantity,
		VoucherNominal: d.voucherNominal(vouchers),
		PointsToUse:    d.PointsToUse,
		PointsBalance:  balances.Points,
		CouponToUse:    d.CouponToUse,
		CouponBalance:  balances.Coupon,
	})
}

func (d *Draft) voucherNominal(vouchers []ticketing.Voucher) pricing.Money {
	if d.VoucherID == nil {
		return 0
	}
	for _, v := range vouchers {
		if v.ID == *d.VoucherID && v.EventID == d.EventID {
			return v.Nominal
		}
	}
	return 0
}
