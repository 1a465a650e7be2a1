package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BatchIDHeader carries the batch id; it is the same for every retry of a
// batch so the collector can ignore deliveries it already counted.
const BatchIDHeader = "X-Batch-ID"

// ErrRejected is returned when the endpoint answered without success.
var ErrRejected = errors.New("batch rejected by endpoint")

// tzOffset returns the offset in minutes as UTC minus local time, so UTC+2
// is -120.
func (tc *Client) tzOffset() int {
	_, offset := tc.now().Zone()
	return -offset / 60
}

// performHTTPRequest sends one attempt of state's batch.
func (tc *Client) performHTTPRequest(ctx context.Context, state *RetryState) (err error) {
	ctx, span := tc.tracer.Start(ctx, "telemetry.send", trace.WithAttributes(
		attribute.String("telemetry.batch_id", state.ID),
		attribute.Int("telemetry.batch_size", len(state.Batch)),
		attribute.Int("telemetry.attempt", state.Attempt),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	jsonData, err := json.Marshal(batchRequest{
		Stack: state.Batch,
		TZ:    tc.tzOffset(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request to JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, tc.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tc.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(BatchIDHeader, state.ID)

	tc.logger.Debug("HTTP request details",
		"method", req.Method,
		"url", req.URL.String(),
		"batch_id", state.ID,
		"attempt", state.Attempt,
		"events", len(state.Batch),
		"payload_size", len(jsonData),
	)

	resp, err := tc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		tc.logger.Debug("HTTP error response details",
			"status_code", resp.StatusCode,
			"status_text", resp.Status,
			"response_body", string(body),
		)

		return fmt.Errorf("HTTP request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var out batchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("%w: unreadable response: %v", ErrRejected, err)
	}
	if !out.Success {
		return ErrRejected
	}

	return nil
}
