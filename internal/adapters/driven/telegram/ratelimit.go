package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond keeps history scans well below flood limits.
const DefaultRequestsPerSecond = 2.0

// RateLimiter throttles API calls with a token bucket and holds every call
// back after a FLOOD_WAIT until the server-imposed wait has passed.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing rps calls per second.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		now:     time.Now,
	}
}

// Wait blocks until a call can be made.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if wait := r.Backoff(); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// RecordFloodWait holds calls back for d.
func (r *RateLimiter) RecordFloodWait(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if until := r.now().Add(d); until.After(r.retryAt) {
		r.retryAt = until
	}
}

// Backoff returns how long calls are still held back.
func (r *RateLimiter) Backoff() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d := r.retryAt.Sub(r.now()); d > 0 {
		return d
	}
	return 0
}

// Middleware applies the limiter to every RPC of a gotd client.
func (r *RateLimiter) Middleware() telegram.Middleware {
	return telegram.MiddlewareFunc(func(next tg.Invoker) telegram.InvokeFunc {
		return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
			if err := r.Wait(ctx); err != nil {
				return err
			}
			err := next.Invoke(ctx, input, output)
			if d, ok := tgerr.AsFloodWait(err); ok {
				r.RecordFloodWait(d)
			}
			return err
		}
	})
}
