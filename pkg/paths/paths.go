package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the user's config directory for insights.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".insights-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", "insights"))
}

// GetDataDir returns the user's data directory for insights (key/value
// store, debug logs).
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".insights"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".insights"))
}
