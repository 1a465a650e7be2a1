package telemetry

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Event kinds.
const (
	KindConfiguration    = "configuration"
	KindInstallationDate = "installationDate"
	KindBookmarks        = "bookmarks"
	KindAction           = "action"

	KindVersion          = "version"
	KindSystem           = "system"
	KindLanguage         = "language"
	KindShareInfo        = "shareInfo"
	KindUserType         = "userType"
	KindInstallationYear = "installationYear"
)

// Event is a single telemetry record. Exactly one of Value and Values is set.
type Event struct {
	Kind   string         `json:"type"`
	Value  *string        `json:"value,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

// NewEvent builds an event for kind. Maps are sent as structured values,
// everything else is converted to its string form.
func NewEvent(kind string, value any) Event {
	event := Event{Kind: kind}

	switch v := value.(type) {
	case map[string]any:
		if v == nil {
			v = map[string]any{}
		}
		event.Values = v
	case string:
		event.Value = &v
	case nil:
		s := "null"
		event.Value = &s
	default:
		s := fmt.Sprint(v)
		event.Value = &s
	}

	return event
}

// SharePermissions are the user's opt-ins for restricted event categories.
type SharePermissions struct {
	Config   bool `json:"config"`
	Activity bool `json:"activity"`
}

// RetryState carries a batch through repeated delivery attempts. ID stays
// the same for every attempt of the batch.
type RetryState struct {
	ID      string
	Batch   []Event
	Attempt int
}

// Result is the outcome of a Flush.
type Result struct {
	Success bool
	// Attempts is the number of requests made for the batch.
	Attempts int
}

// batchRequest is the body POSTed to the collection endpoint.
type batchRequest struct {
	Stack []Event `json:"stack"`
	TZ    int     `json:"tz"`
}

type batchResponse struct {
	Success bool `json:"success"`
}

// HTTPClient interface for making HTTP requests (allows mocking in tests)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// structToMap converts a struct to map[string]any using JSON marshaling so
// Track callers can pass tagged structs as structured values.
func structToMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal struct: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}

	return result, nil
}
