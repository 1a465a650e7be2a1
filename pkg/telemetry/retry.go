package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Flush sends a batch and retries it until it is delivered or the retry
// budget is spent.
//
// A state with a batch and a non-zero attempt continues that batch's retries
// and does not pick up new events. Anything else drains the stack into a
// fresh batch; an empty stack sends nothing.
func (tc *Client) Flush(ctx context.Context, state *RetryState) Result {
	if state == nil || len(state.Batch) == 0 || state.Attempt == 0 {
		batch := tc.stack.Drain()
		if len(batch) == 0 {
			return Result{}
		}
		state = &RetryState{ID: uuid.NewString(), Batch: batch}
	} else if state.ID == "" {
		state.ID = uuid.NewString()
	}

	if tc.endpoint == "" {
		tc.logger.Debug("Dropping batch - no endpoint configured", "batch_id", state.ID, "events", len(state.Batch))
		return Result{}
	}

	attempts := 0
	for {
		attempts++
		err := tc.performHTTPRequest(ctx, state)
		if err == nil {
			tc.logger.Debug("Batch delivered", "batch_id", state.ID, "events", len(state.Batch), "attempt", state.Attempt)
			return Result{Success: true, Attempts: attempts}
		}

		delay, ok := nextRetry(state, tc.retryDelay, tc.maxRetries)
		if !ok {
			tc.logger.Warn("Dropping batch after retries", "batch_id", state.ID, "events", len(state.Batch), "attempt", state.Attempt, "error", err)
			return Result{Success: false, Attempts: attempts}
		}

		tc.logger.Debug("Batch delivery failed, retrying", "batch_id", state.ID, "next_attempt", state.Attempt+1, "backoff", delay, "error", err)

		if !sleepWithContext(ctx, delay) {
			tc.logger.Debug("Discarding batch on shutdown", "batch_id", state.ID, "events", len(state.Batch))
			return Result{Success: false, Attempts: attempts}
		}
		state.Attempt++
	}
}

// nextRetry returns how long to wait before the attempt after state.Attempt:
// attempt k waits (k+1)*unit. It returns false once state has used up
// maxRetries. The caller advances state.Attempt once the wait is over.
func nextRetry(state *RetryState, unit time.Duration, maxRetries int) (time.Duration, bool) {
	if state.Attempt >= maxRetries {
		return 0, false
	}
	return time.Duration(state.Attempt+1) * unit, true
}

// sleepWithContext sleeps for the specified duration, returning early if context is cancelled.
// Returns true if the sleep completed, false if it was interrupted by context cancellation.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
