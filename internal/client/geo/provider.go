// Package geo abstracts the platform location capability and the external
// reverse-geocoding collaborator.
package geo

import (
	"context"
	"sync"
	"time"
)

// Fix is a one-shot location fix from the platform.
type Fix struct {
	Lat      float64
	Lng      float64
	Accuracy float64
	At       time.Time
}

// Provider resolves the current device location once. Implementations must
// honor ctx cancellation and deadlines; failures are expected and callers
// always recover with a default location.
type Provider interface {
	Resolve(ctx context.Context) (Fix, error)
}

// StaticProvider always returns the same fix. Used when coordinates are
// configured explicitly, and in tests.
type StaticProvider struct {
	Fix Fix
}

func (p *StaticProvider) Resolve(_ context.Context) (Fix, error) {
	return p.Fix, nil
}

// CachedProvider reuses a recent fix from the wrapped provider instead of
// resolving again, mirroring the platform's maximum-age tolerance.
type CachedProvider struct {
	Inner  Provider
	MaxAge time.Duration

	now  func() time.Time
	mu   sync.Mutex
	last *Fix
}

func NewCachedProvider(inner Provider, maxAge time.Duration) *CachedProvider {
	return &CachedProvider{Inner: inner, MaxAge: maxAge, now: time.Now}
}

func (p *CachedProvider) Resolve(ctx context.Context) (Fix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last != nil && p.now().Sub(p.last.At) <= p.MaxAge {
		return *p.last, nil
	}

	fix, err := p.Inner.Resolve(ctx)
	if err != nil {
		return Fix{}, err
	}
	if fix.At.IsZero() {
		fix.At = p.now()
	}
	p.last = &fix
	return fix, nil
}
