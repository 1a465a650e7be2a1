package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bsidebar/insights/pkg/kvstore"
)

// User types reported in the daily snapshot.
const (
	UserTypeDefault = "default"
	UserTypePremium = "premium"
)

// Model is the persisted state the pipeline reads and writes.
type Model interface {
	LastTrackDate(ctx context.Context) (time.Time, bool, error)
	SetLastTrackDate(ctx context.Context, day time.Time) error
	InstallationDate(ctx context.Context) (time.Time, bool, error)
	// SharePermissions reports ok=false when the user never made a choice.
	SharePermissions(ctx context.Context) (perms SharePermissions, ok bool, err error)
	UserType(ctx context.Context) (string, error)
}

// StoreModel implements Model on top of a kvstore.Store. Dates are stored
// as unix milliseconds and share permissions as a JSON object.
type StoreModel struct {
	store kvstore.Store
}

func NewStoreModel(store kvstore.Store) *StoreModel {
	return &StoreModel{store: store}
}

func (m *StoreModel) LastTrackDate(ctx context.Context) (time.Time, bool, error) {
	return m.date(ctx, kvstore.KeyLastTrackDate)
}

func (m *StoreModel) SetLastTrackDate(ctx context.Context, day time.Time) error {
	return m.store.Set(ctx, kvstore.KeyLastTrackDate, strconv.FormatInt(day.UnixMilli(), 10))
}

func (m *StoreModel) InstallationDate(ctx context.Context) (time.Time, bool, error) {
	return m.date(ctx, kvstore.KeyInstallationDate)
}

// SetInstallationDate records when the sidebar was installed.
func (m *StoreModel) SetInstallationDate(ctx context.Context, t time.Time) error {
	return m.store.Set(ctx, kvstore.KeyInstallationDate, strconv.FormatInt(t.UnixMilli(), 10))
}

// EnsureInstallationDate records t as the installation date unless one is
// already stored. It reports whether it wrote a value.
func (m *StoreModel) EnsureInstallationDate(ctx context.Context, t time.Time) (bool, error) {
	if _, ok, err := m.InstallationDate(ctx); err != nil || ok {
		return false, err
	}
	if err := m.SetInstallationDate(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

func (m *StoreModel) SharePermissions(ctx context.Context) (SharePermissions, bool, error) {
	raw, err := m.get(ctx, kvstore.KeyShareInfo)
	if err != nil || raw == "" {
		return SharePermissions{}, false, err
	}

	var perms SharePermissions
	if err := json.Unmarshal([]byte(raw), &perms); err != nil {
		return SharePermissions{}, false, nil
	}
	return perms, true, nil
}

// SetSharePermissions stores the user's choice.
func (m *StoreModel) SetSharePermissions(ctx context.Context, perms SharePermissions) error {
	data, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("failed to marshal share permissions: %w", err)
	}
	return m.store.Set(ctx, kvstore.KeyShareInfo, string(data))
}

// UserType is "premium" once a license key has been stored.
func (m *StoreModel) UserType(ctx context.Context) (string, error) {
	key, err := m.get(ctx, kvstore.KeyLicenseKey)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) != "" {
		return UserTypePremium, nil
	}
	return UserTypeDefault, nil
}

// get returns "" for keys that were never set.
func (m *StoreModel) get(ctx context.Context, key string) (string, error) {
	v, err := m.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, nil
}

// date treats unparseable values as absent.
func (m *StoreModel) date(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := m.get(ctx, key)
	if err != nil || raw == "" {
		return time.Time{}, false, err
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}
