package server

import "github.com/bsidebar/insights/pkg/telemetry"

// EvaluateRequest is the batch body sent by the telemetry client.
type EvaluateRequest struct {
	Stack []telemetry.Event `json:"stack"`
	TZ    int               `json:"tz"`
}

type EvaluateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Stats struct {
	Batches    int            `json:"batches"`
	Duplicates int            `json:"duplicates"`
	Rejected   int            `json:"rejected"`
	Events     int            `json:"events"`
	Kinds      map[string]int `json:"kinds"`
}
