package app

import (
	"context"
	"log"
	"time"

	"github.com/crobledo/vitrina/internal/catalog"
	"github.com/crobledo/vitrina/internal/state"
)

const (
	defaultRefreshInterval = 30 * time.Second
	maxBackoff             = 5 * time.Minute
)

// StartPoller launches a background goroutine that refreshes the product
// collection at a fixed cadence, backing off while the API is unreachable.
// It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client catalog.Resource, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		for {
			refresh(ctx, store, client)

			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// refresh runs one full collection load through the store's generation
// tokens, so a slow response can never clobber a fresher one.
func refresh(ctx context.Context, store *state.Store, client catalog.Resource) {
	gen := store.BeginLoad()
	products, err := client.List(ctx)
	store.ApplyLoad(gen, products, err)
	if err != nil && ctx.Err() == nil {
		log.Printf("catalog refresh failed: %v", err)
	}
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
