package coros

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum interval between requests. The vendor
// publishes no rate limits or quota headers, so this is a politeness
// floor rather than a quota tracker.
type Pacer struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
}

// NewPacer creates a pacer with the given minimum interval between
// requests. A zero interval disables pacing.
func NewPacer(minInterval time.Duration) *Pacer {
	return &Pacer{minInterval: minInterval}
}

// Wait blocks until the next request may be sent.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.minInterval == 0 {
		return nil
	}

	p.mu.Lock()
	elapsed := time.Since(p.lastRequest)
	if elapsed < p.minInterval {
		wait := p.minInterval - elapsed
		p.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
		p.mu.Lock()
	}
	p.lastRequest = time.Now()
	p.mu.Unlock()

	return nil
}
