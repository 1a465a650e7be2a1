package telemetry

import (
	"context"
	"time"
)

// Start flushes the stack every interval until ctx is done. Each flush runs
// on its own goroutine so a batch that is waiting to be retried never delays
// the next tick.
func (tc *Client) Start(ctx context.Context) {
	if !tc.enabled {
		return
	}

	tc.inflight.Add(1)
	go func() {
		defer tc.inflight.Done()

		ticker := time.NewTicker(tc.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tc.tick(ctx)
			}
		}
	}()
}

func (tc *Client) tick(ctx context.Context) {
	if ctx.Err() != nil || tc.stack.Len() == 0 {
		return
	}

	tc.inflight.Add(1)
	go func() {
		defer tc.inflight.Done()
		tc.Flush(ctx, nil)
	}()
}
