package pricing

import "testing"

func TestComputeSubtotalExact(t *testing.T) {
	for _, tc := range []struct {
		qty   int
		price Money
		want  Money
	}{
		{0, 75_000, 0},
		{1, 75_000, 75_000},
		{3, 50_000, 150_000},
		{7, 0, 0},
	} {
		got := Compute(Inputs{UnitPrice: tc.price, Quantity: tc.qty}).Subtotal
		if got != tc.want {
			t.Fatalf("qty=%d price=%d: expected subtotal %d, got %d", tc.qty, tc.price, tc.want, got)
		}
	}
}

func TestComputeVoucherAndPoints(t *testing.T) {
	b := Compute(Inputs{
		UnitPrice:      75_000,
		Quantity:       1,
		VoucherNominal: 7_000,
		PointsToUse:    5_000,
		PointsBalance:  10_000,
	})
	if b.Subtotal != 75_000 {
		t.Fatalf("expected subtotal 75000, got %d", b.Subtotal)
	}
	if b.VoucherDiscount != 7_000 || b.PointsDiscount != 5_000 || b.CouponDiscount != 0 {
		t.Fatalf("unexpected discount lines: %+v", b)
	}
	if b.Total != 63_000 {
		t.Fatalf("expected total 63000, got %d", b.Total)
	}
}

func TestComputeTotalFloorsAtZero(t *testing.T) {
	b := Compute(Inputs{
		UnitPrice:     50_000,
		Quantity:      2,
		PointsToUse:   150_000,
		PointsBalance: 150_000,
	})
	if b.Subtotal != 100_000 {
		t.Fatalf("expected subtotal 100000, got %d", b.Subtotal)
	}
	if b.PointsDiscount != 100_000 {
		t.Fatalf("expected points line capped at 100000, got %d", b.PointsDiscount)
	}
	if b.Total != 0 {
		t.Fatalf("expected total 0, got %d", b.Total)
	}
}

func TestComputeNeverNegative(t *testing.T) {
	amounts := []Money{0, 1, 4_999, 75_000, 1_000_000}
	for _, voucher := range amounts {
		for _, points := range amounts {
			for _, coupon := range amounts {
				b := Compute(Inputs{
					UnitPrice:      75_000,
					Quantity:       1,
					VoucherNominal: voucher,
					PointsToUse:    points,
					PointsBalance:  points,
					CouponToUse:    coupon,
					CouponBalance:  coupon,
				})
				if b.Total < 0 {
					t.Fatalf("negative total %d for voucher=%d points=%d coupon=%d", b.Total, voucher, points, coupon)
				}
				sum := b.VoucherDiscount + b.PointsDiscount + b.CouponDiscount
				if b.Subtotal-sum != b.Total {
					t.Fatalf("lines do not reconcile: %+v", b)
				}
			}
		}
	}
}

func TestComputeDefensiveInputs(t *testing.T) {
	b := Compute(Inputs{UnitPrice: -500, Quantity: -3, VoucherNominal: -1, PointsToUse: -20})
	if b.Subtotal != 0 || b.Total != 0 {
		t.Fatalf("expected all-zero breakdown, got %+v", b)
	}
}

func TestClampSpendBounds(t *testing.T) {
	if got := ClampSpend(999_999, 1_500); got != 1_500 {
		t.Fatalf("expected over-balance entry clamped to 1500, got %d", got)
	}
	if got := ClampSpend(-42, 1_500); got != 0 {
		t.Fatalf("expected negative entry clamped to 0, got %d", got)
	}
	if got := ClampSpend(700, 1_500); got != 700 {
		t.Fatalf("expected in-range entry kept, got %d", got)
	}
}

func TestClampSpendIdempotent(t *testing.T) {
	for _, raw := range []Money{-10, 0, 700, 1_500, 999_999} {
		once := ClampSpend(raw, 1_500)
		twice := ClampSpend(once, 1_500)
		if once != twice {
			t.Fatalf("clamp not idempotent for %d: %d vs %d", raw, once, twice)
		}
	}
}
