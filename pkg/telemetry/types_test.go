package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	e := NewEvent(KindVersion, "2.4.1")
	assert.Equal(t, "2.4.1", eventValue(t, e))
	assert.Nil(t, e.Values)

	assert.Equal(t, "42", eventValue(t, NewEvent(KindBookmarks, 42)))
	assert.Equal(t, "true", eventValue(t, NewEvent(KindShareInfo, true)))
	assert.Equal(t, "null", eventValue(t, NewEvent(KindShareInfo, nil)))

	e = NewEvent(KindConfiguration, map[string]any{"name": "language_code", "value": "de"})
	assert.Nil(t, e.Value)
	assert.Equal(t, map[string]any{"name": "language_code", "value": "de"}, e.Values)
}

func TestEvent_WireFormat(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(batchRequest{
		Stack: []Event{
			NewEvent(KindVersion, "2.4.1"),
			NewEvent(KindConfiguration, map[string]any{"name": "newtab_override", "value": "false"}),
		},
		TZ: -60,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"stack": [
			{"type": "version", "value": "2.4.1"},
			{"type": "configuration", "values": {"name": "newtab_override", "value": "false"}}
		],
		"tz": -60
	}`, string(data))
}

type actionDetails struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}

func TestTrack_Struct(t *testing.T) {
	model := NewStoreModel(newRecordingStore())
	require.NoError(t, model.SetSharePermissions(t.Context(), SharePermissions{Activity: true}))
	client := newTestClient(t, NewMockHTTPClient(), WithModel(model))

	client.Track(t.Context(), KindAction, &actionDetails{Name: "pin"}, false)

	events := client.stack.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, map[string]any{"name": "pin"}, events[0].Values)
}
