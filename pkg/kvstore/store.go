// Package kvstore provides the small get/set key/value store the telemetry
// pipeline reads its persisted state from: the last tracked date, the
// installation date, share permissions and the license key.
//
// Values are opaque strings; typed access lives with the caller.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Well-known keys.
const (
	KeyLastTrackDate    = "lastTrackDate"
	KeyInstallationDate = "installationDate"
	KeyShareInfo        = "shareInfo"
	KeyLicenseKey       = "licenseKey"
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Driver   string
	Path     string
	RedisURL string
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return NewFile(opts.Path)
	case DriverSQLite:
		return NewSQLite(ctx, opts.Path)
	case DriverRedis:
		return NewRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
