package offers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eventku-checkout/internal/ticketing"
)

type fakeUpstream struct {
	eventCalls int
	offer      ticketing.EventOffer
	vouchers   []ticketing.Voucher
	points     ticketing.Balances
	coupons    ticketing.Balances
}

func (f *fakeUpstream) Event(ctx context.Context, id int64) (ticketing.EventOffer, error) {
	f.eventCalls++
	return f.offer, nil
}

func (f *fakeUpstream) Vouchers(ctx context.Context, eventID int64) ([]ticketing.Voucher, error) {
	return f.vouchers, nil
}

func (f *fakeUpstream) Points(ctx context.Context) (ticketing.Balances, error) {
	return f.points, nil
}

func (f *fakeUpstream) Coupons(ctx context.Context) (ticketing.Balances, error) {
	return f.coupons, nil
}

func newTestService(t *testing.T, up *fakeUpstream) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Service{
		Client: up,
		Cache:  NewCache(rdb, time.Minute),
		Logger: zerolog.Nop(),
	}, mr
}

func TestEventCachesOffer(t *testing.T) {
	up := &fakeUpstream{offer: ticketing.EventOffer{ID: 3, Name: "Konser", Price: 120_000, AvailableSeats: 40}}
	svc, mr := newTestService(t, up)

	first, err := svc.Event(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, up.offer, first)
	require.Equal(t, 1, up.eventCalls)
	require.True(t, mr.Exists(EventKey(3)))

	second, err := svc.Event(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, up.eventCalls, "second read must come from cache")
}

func TestEventCacheExpiry(t *testing.T) {
	up := &fakeUpstream{offer: ticketing.EventOffer{ID: 3, Price: 120_000}}
	svc, mr := newTestService(t, up)

	_, err := svc.Event(context.Background(), 3)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = svc.Event(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 2, up.eventCalls)
}

func TestEventWithoutRedisFallsThrough(t *testing.T) {
	up := &fakeUpstream{offer: ticketing.EventOffer{ID: 3, Price: 120_000}}
	svc := &Service{Client: up, Cache: NewCache(nil, time.Minute), Logger: zerolog.Nop()}

	_, err := svc.Event(context.Background(), 3)
	require.NoError(t, err)
	_, err = svc.Event(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 2, up.eventCalls)
}

func TestBalancesCombinesBothInstruments(t *testing.T) {
	up := &fakeUpstream{
		points:  ticketing.Balances{Points: 10_000},
		coupons: ticketing.Balances{Coupon: 5_000},
	}
	svc, _ := newTestService(t, up)

	balances, err := svc.Balances(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(10_000), balances.Points)
	require.Equal(t, int64(5_000), balances.Coupon)
}
