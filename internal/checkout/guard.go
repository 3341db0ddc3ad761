package checkout

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmitGuard serialises submissions per user across requests. The workflow's
// atomic state covers one process; the guard covers repeated clicks that
// arrive as separate requests. Best effort: without Redis every request is
// admitted and the upstream Idempotency-Key remains the backstop.
type SubmitGuard struct {
	R   *redis.Client
	TTL time.Duration
}

// Acquire reports whether the caller may submit now. The slot is held until
// Release or until the TTL expires, whichever comes first.
func (g SubmitGuard) Acquire(ctx context.Context, userID string) (bool, error) {
	if g.R == nil || userID == "" {
		return true, nil
	}
	ttl := g.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return g.R.SetNX(ctx, g.key(userID), "submitting", ttl).Result()
}

// Release frees the submission slot.
func (g SubmitGuard) Release(ctx context.Context, userID string) {
	if g.R == nil || userID == "" {
		return
	}
	_ = g.R.Del(ctx, g.key(userID)).Err()
}

func (g SubmitGuard) key(userID string) string {
	return "checkout:submit:" + userID
}
