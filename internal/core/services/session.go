package services

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// SessionGate serialises use of the single platform session.
// Holders keep it for one request (a resolve or a page fetch), never for a
// whole pass, so backfills and live events interleave.
type SessionGate struct {
	sem *semaphore.Weighted
}

// NewSessionGate creates an open gate.
func NewSessionGate() *SessionGate {
	return &SessionGate{sem: semaphore.NewWeighted(1)}
}

// Do runs fn while holding the session. The session is released when fn
// returns or panics. Returns ctx.Err() if ctx ends while waiting.
func (g *SessionGate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn(ctx)
}

// Busy reports whether the session is held right now.
func (g *SessionGate) Busy() bool {
	if g.sem.TryAcquire(1) {
		g.sem.Release(1)
		return false
	}
	return true
}
