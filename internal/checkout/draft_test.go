package checkout

import (
	"testing"

	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

func TestNewDraftSeeds(t *testing.T) {
	d := NewDraft(7)
	if d.EventID != 7 || d.Quantity != 1 || d.VoucherID != nil || d.PointsToUse != 0 || d.CouponToUse != 0 {
		t.Fatalf("unexpected seed draft: %+v", d)
	}
}

func TestUsePointsClampsAtEditBoundary(t *testing.T) {
	d := NewDraft(1)
	if got := d.UsePoints(999_999, 1_500); got != 1_500 {
		t.Fatalf("expected accepted value 1500, got %d", got)
	}
	if d.PointsToUse != 1_500 {
		t.Fatalf("expected draft to hold 1500, got %d", d.PointsToUse)
	}
	if got := d.UsePoints(-50, 1_500); got != 0 {
		t.Fatalf("expected negative entry clamped to 0, got %d", got)
	}
}

func TestCouponClampsIndependently(t *testing.T) {
	d := NewDraft(1)
	d.UsePoints(1_000, 1_000)
	if got := d.UseCoupon(9_000, 5_000); got != 5_000 {
		t.Fatalf("expected coupon clamped to its own balance, got %d", got)
	}
	if d.PointsToUse != 1_000 {
		t.Fatalf("coupon edit must not touch points, got %d", d.PointsToUse)
	}
}

func TestBreakdownResolvesVoucher(t *testing.T) {
	offer := ticketing.EventOffer{ID: 1, Price: 75_000, AvailableSeats: 10}
	vouchers := []ticketing.Voucher{
		{ID: 11, Nominal: 7_000, EventID: 1},
		{ID: 12, Nominal: 9_000, EventID: 2},
	}
	d := NewDraft(1)
	voucherID := int64(11)
	d.SelectVoucher(&voucherID)
	d.UsePoints(5_000, 10_000)

	b := d.Breakdown(offer, vouchers, ticketing.Balances{Points: 10_000})
	if b.Subtotal != 75_000 || b.VoucherDiscount != 7_000 || b.PointsDiscount != 5_000 || b.Total != 63_000 {
		t.Fatalf("unexpected breakdown: %+v", b)
	}

	// A voucher scoped to another event contributes nothing.
	other := int64(12)
	d.SelectVoucher(&other)
	b = d.Breakdown(offer, vouchers, ticketing.Balances{Points: 10_000})
	if b.VoucherDiscount != 0 {
		t.Fatalf("expected foreign voucher ignored, got %d", b.VoucherDiscount)
	}
}

func TestValidateQuantity(t *testing.T) {
	offer := ticketing.EventOffer{ID: 1, Price: 50_000, AvailableSeats: 3}

	d := NewDraft(1)
	d.SetQuantity(0)
	fields := d.Validate(offer, nil)
	if fields == nil || fields["quantity"] == "" {
		t.Fatalf("expected quantity error, got %v", fields)
	}

	d.SetQuantity(5)
	fields = d.Validate(offer, nil)
	if fields == nil || fields["quantity"] == "" {
		t.Fatalf("expected seat ceiling error, got %v", fields)
	}

	d.SetQuantity(3)
	if fields := d.Validate(offer, nil); fields != nil {
		t.Fatalf("expected valid draft, got %v", fields)
	}
}

func TestValidateVoucherScope(t *testing.T) {
	offer := ticketing.EventOffer{ID: 1, Price: 50_000, AvailableSeats: 10}
	vouchers := []ticketing.Voucher{{ID: 11, Nominal: 7_000, EventID: 2}}

	d := NewDraft(1)
	voucherID := int64(11)
	d.SelectVoucher(&voucherID)
	fields := d.Validate(offer, vouchers)
	if fields == nil || fields["voucher"] == "" {
		t.Fatalf("expected voucher error, got %v", fields)
	}

	unknown := int64(99)
	d.SelectVoucher(&unknown)
	fields = d.Validate(offer, vouchers)
	if fields == nil || fields["voucher"] == "" {
		t.Fatalf("expected unknown voucher rejected, got %v", fields)
	}

	d.SelectVoucher(nil)
	if fields := d.Validate(offer, vouchers); fields != nil {
		t.Fatalf("expected valid draft without voucher, got %v", fields)
	}
}
