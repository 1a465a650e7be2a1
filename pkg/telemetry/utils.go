package telemetry

import (
	"flag"
	"os"
)

// GetTelemetryEnabled reports whether telemetry may send anything. It is
// always false under "go test".
func GetTelemetryEnabled() bool {
	if flag.Lookup("test.v") != nil {
		return false
	}
	return getTelemetryEnabledFromEnv()
}

// getTelemetryEnabledFromEnv checks only the environment variable,
// without the test detection bypass.
func getTelemetryEnabledFromEnv() bool {
	if env := os.Getenv("TELEMETRY_ENABLED"); env != "" {
		// Only disable if explicitly set to "false"
		return env != "false"
	}
	return true
}
