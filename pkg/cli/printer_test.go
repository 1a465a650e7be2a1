package cli

import (
	"bytes"
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/bsidebar/insights/pkg/server"
	"github.com/bsidebar/insights/pkg/telemetry"
)

func TestFormatValues_Empty(t *testing.T) {
	assert.Equal(t, `()`, formatValues(nil))
}

func TestFormatValues_SortedKeys(t *testing.T) {
	formatted := formatValues(map[string]any{"value": "false", "name": "newtab_override"})

	assert.Equal(t, `(name: "newtab_override", value: "false")`, formatted)
}

func TestFormatValues_NonStrings(t *testing.T) {
	formatted := formatValues(map[string]any{"count": 3, "list": []any{1, "a"}})

	assert.Equal(t, `(count: 3, list: [1,"a"])`, formatted)
}

func TestPrintEvent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvent(telemetry.NewEvent(telemetry.KindVersion, "2.4.1"))
	p.PrintEvent(telemetry.NewEvent(telemetry.KindConfiguration, map[string]any{"name": "language_code", "value": "de"}))

	assert.Equal(t, "version → \"2.4.1\"\nconfiguration → (name: \"language_code\", value: \"de\")\n", buf.String())
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintResult(telemetry.Result{})
	p.PrintResult(telemetry.Result{Success: true, Attempts: 1})
	p.PrintResult(telemetry.Result{Attempts: 101})

	assert.Equal(t, "Nothing sent.\nDelivered after 1 attempt(s)\nDropped after 101 attempt(s)\n", buf.String())
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintStats(server.Stats{
		Batches:    2,
		Duplicates: 1,
		Events:     3,
		Kinds:      map[string]int{"version": 2, "language": 1},
	})

	assert.Equal(t, "Batches: 2 (1 duplicate, 0 rejected)\nEvents: 3\n  language           1\n  version            2\n", buf.String())
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintError(errors.New("boom"))

	assert.Equal(t, "error: boom\n", buf.String())
}
