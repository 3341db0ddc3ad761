package checkout

import (
	"fmt"
	"sort"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors is the field-keyed error map consumed by the presentation layer.
// It blocks submission; it is never sent to the network layer.
type FieldErrors map[string]string

// Error implements the error interface.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "checkout: invalid draft (" + strings.Join(parts, "; ") + ")"
}

// Validate gates submission of the draft against the offer and the vouchers
// the user actually holds. A nil return means the draft may be submitted.
// Seat availability is re-checked upstream on submission; the ceiling here is
// user feedback, not enforcement.
func (d *Draft) Validate(offer ticketing.EventOffer, vouchers []ticketing.Voucher) FieldErrors {
	fields := FieldErrors{}

	if err := validate.Struct(d); err != nil {
		if invalid, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range invalid {
				switch fe.Field() {
				case "Quantity":
					fields["quantity"] = "quantity must be at least 1"
				case "EventID":
					fields["eventId"] = "event is required"
				case "PointsToUse":
					fields["pointsToUse"] = "points must not be negative"
				case "CouponToUse":
					fields["couponToUse"] = "coupon must not be negative"
				}
			}
		} else {
			fields["draft"] = err.Error()
		}
	}

	if _, seen := fields["quantity"]; !seen && offer.AvailableSeats > 0 && d.Quantity > offer.AvailableSeats {
		fields["quantity"] = fmt.Sprintf("only %d seats available", offer.AvailableSeats)
	}

	if d.VoucherID != nil && !voucherMatches(*d.VoucherID, d.EventID, vouchers) {
		fields["voucher"] = "voucher is not valid for this event"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func voucherMatches(voucherID, eventID int64, vouchers []ticketing.Voucher) bool {
	for _, v := range vouchers {
		if v.ID == voucherID {
			return v.EventID == eventID
		}
	}
	return false
}
