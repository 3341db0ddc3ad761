package offers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

// Upstream is the slice of the ticketing client the offers layer reads from.
type Upstream interface {
	Event(ctx context.Context, id int64) (ticketing.EventOffer, error)
	Vouchers(ctx context.Context, eventID int64) ([]ticketing.Voucher, error)
	Points(ctx context.Context) (ticketing.Balances, error)
	Coupons(ctx context.Context) (ticketing.Balances, error)
}

// Service is the cache-aside read layer for everything checkout needs before
// submitting: the offer, the caller's vouchers and both balances. Per-user
// data is never cached; only the public offer is.
type Service struct {
	Client Upstream
	Cache  *Cache
	Logger zerolog.Logger
}

// Event returns the offer for an event, from cache when fresh.
func (s *Service) Event(ctx context.Context, id int64) (ticketing.EventOffer, error) {
	key := EventKey(id)
	var cached ticketing.EventOffer
	hit, err := s.Cache.GetJSON(ctx, key, &cached)
	if err != nil {
		s.Logger.Warn().Err(err).Int64("event_id", id).Msg("offer cache read failed")
	}
	if hit {
		return cached, nil
	}

	offer, err := s.Client.Event(ctx, id)
	if err != nil {
		return ticketing.EventOffer{}, err
	}
	if err := s.Cache.SetJSON(ctx, key, offer); err != nil {
		s.Logger.Warn().Err(err).Int64("event_id", id).Msg("offer cache write failed")
	}
	return offer, nil
}

// Balances fetches the caller's points and coupon balances. Both endpoints
// return the same envelope; each call fills its own field.
func (s *Service) Balances(ctx context.Context) (ticketing.Balances, error) {
	points, err := s.Client.Points(ctx)
	if err != nil {
		return ticketing.Balances{}, err
	}
	coupons, err := s.Client.Coupons(ctx)
	if err != nil {
		return ticketing.Balances{}, err
	}
	return ticketing.Balances{Points: points.Points, Coupon: coupons.Coupon}, nil
}

// Vouchers lists the caller's vouchers for the event. Uncached: voucher state
// changes with every redemption.
func (s *Service) Vouchers(ctx context.Context, eventID int64) ([]ticketing.Voucher, error) {
	return s.Client.Vouchers(ctx, eventID)
}
