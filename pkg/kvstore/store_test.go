package kvstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAll(t *testing.T) map[string]Store {
	t.Helper()

	dir := t.TempDir()
	mr := miniredis.RunT(t)

	stores := map[string]Store{}
	for name, opts := range map[string]Options{
		DriverMemory: {Driver: DriverMemory},
		DriverFile:   {Driver: DriverFile, Path: filepath.Join(dir, "store.yaml")},
		DriverSQLite: {Driver: DriverSQLite, Path: filepath.Join(dir, "store.db")},
		DriverRedis:  {Driver: DriverRedis, RedisURL: "redis://" + mr.Addr()},
	} {
		s, err := Open(t.Context(), opts)
		require.NoError(t, err, name)
		t.Cleanup(func() { _ = s.Close() })
		stores[name] = s
	}
	return stores
}

func TestStores_GetSet(t *testing.T) {
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			_, err := s.Get(ctx, KeyLastTrackDate)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyLastTrackDate, "1700000000000"))
			v, err := s.Get(ctx, KeyLastTrackDate)
			require.NoError(t, err)
			assert.Equal(t, "1700000000000", v)

			require.NoError(t, s.Set(ctx, KeyLastTrackDate, "1700086400000"))
			v, err = s.Get(ctx, KeyLastTrackDate)
			require.NoError(t, err)
			assert.Equal(t, "1700086400000", v)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(t.Context(), Options{Driver: "etcd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}

func TestOpen_MissingSettings(t *testing.T) {
	_, err := Open(t.Context(), Options{Driver: DriverFile})
	require.Error(t, err)

	_, err = Open(t.Context(), Options{Driver: DriverSQLite})
	require.Error(t, err)

	_, err = Open(t.Context(), Options{Driver: DriverRedis})
	require.Error(t, err)
}

func TestFile_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.yaml")

	s, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(t.Context(), KeyLicenseKey, "ABCD-1234"))

	reopened, err := NewFile(path)
	require.NoError(t, err)
	v, err := reopened.Get(t.Context(), KeyLicenseKey)
	require.NoError(t, err)
	assert.Equal(t, "ABCD-1234", v)
}

func TestFile_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

	_, err := NewFile(path)
	require.Error(t, err)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	s, err := NewSQLite(t.Context(), path)
	require.NoError(t, err)
	require.NoError(t, s.Set(t.Context(), KeyInstallationDate, "1600000000000"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(t.Context(), path)
	require.NoError(t, err)
	defer reopened.Close()

	v, err := reopened.Get(t.Context(), KeyInstallationDate)
	require.NoError(t, err)
	assert.Equal(t, "1600000000000", v)
}

func TestRedis_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedis(t.Context(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(t.Context(), KeyShareInfo, `{"config":true,"activity":false}`))

	raw, err := mr.Get("insights:" + KeyShareInfo)
	require.NoError(t, err)
	assert.JSONEq(t, `{"config":true,"activity":false}`, raw)
}

func TestRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(t.Context(), "redis://127.0.0.1:1")
	require.Error(t, err)
}
