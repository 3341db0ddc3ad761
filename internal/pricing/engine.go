package pricing

// Money represents a monetary value stored in minor units (IDR).
type Money = int64

// Inputs collects everything the breakdown depends on: the offer being bought,
// the draft selections and the balances the user actually owns. Absent values
// default to zero, matching the loosely-typed upstream payloads.
type Inputs struct {
	UnitPrice      Money
	Quantity       int
	VoucherNominal Money
	PointsToUse    Money
	PointsBalance  Money
	CouponToUse    Money
	CouponBalance  Money
}

// Breakdown is the display-ready pricing summary. Discount lines always sum to
// Subtotal-Total, so rendering them never needs to re-derive anything.
type Breakdown struct {
	Subtotal        Money `json:"subtotal"`
	VoucherDiscount Money `json:"voucherDiscount"`
	PointsDiscount  Money `json:"pointsDiscount"`
	CouponDiscount  Money `json:"couponDiscount"`
	Total           Money `json:"total"`
}

// Compute derives the breakdown from the provided inputs. It is pure and never
// fails: out-of-range values are clamped, not rejected. Discounts apply in
// voucher, points, coupon order and each line is capped at the remaining
// payable amount, so the total cannot go negative.
func Compute(in Inputs) Breakdown {
	var subtotal Money
	if in.Quantity > 0 && in.UnitPrice > 0 {
		subtotal = Money(in.Quantity) * in.UnitPrice
	}

	remaining := subtotal

	voucher := clampLine(in.VoucherNominal, remaining)
	remaining -= voucher

	points := clampLine(ClampSpend(in.PointsToUse, in.PointsBalance), remaining)
	remaining -= points

	coupon := clampLine(ClampSpend(in.CouponToUse, in.CouponBalance), remaining)
	remaining -= coupon

	return Breakdown{
		Subtotal:        subtotal,
		VoucherDiscount: voucher,
		PointsDiscount:  points,
		CouponDiscount:  coupon,
		Total:           remaining,
	}
}

// ClampSpend bounds a user-entered spend amount to [0, balance]. It runs at
// the edit boundary so an input never holds an over-limit value, and again
// inside Compute so a balance that shrank after the edit cannot leak through.
// Idempotent.
func ClampSpend(raw, balance Money) Money {
	if raw < 0 {
		return 0
	}
	if balance < 0 {
		balance = 0
	}
	if raw > balance {
		return balance
	}
	return raw
}

func clampLine(amount, remaining Money) Money {
	if amount < 0 {
		return 0
	}
	if amount > remaining {
		return remaining
	}
	return amount
}
