package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-edoctorat/token/store"
	"github.com/stretchr/testify/require"
)

func storeContract(t *testing.T, s store.Store) {
	t.Helper()

	_, ok := s.Get(store.AccessTokenKey)
	require.False(t, ok)

	require.NoError(t, s.Set(store.AccessTokenKey, "a1"))
	require.NoError(t, s.Set(store.RefreshTokenKey, "r1"))

	v, ok := s.Get(store.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, "a1", v)

	require.NoError(t, s.Remove(store.AccessTokenKey))
	_, ok = s.Get(store.AccessTokenKey)
	require.False(t, ok)
	v, ok = s.Get(store.RefreshTokenKey)
	require.True(t, ok)
	require.Equal(t, "r1", v)

	require.NoError(t, s.Set(store.AccessTokenKey, "a2"))
	require.NoError(t, s.Clear())
	_, ok = s.Get(store.AccessTokenKey)
	require.False(t, ok)
	_, ok = s.Get(store.RefreshTokenKey)
	require.False(t, ok)
}

func TestMemory(t *testing.T) {
	storeContract(t, store.NewMemory())
}

func TestFile(t *testing.T) {
	storeContract(t, openFile(t))
}

func TestMemory_Subscribe(t *testing.T) {
	s := store.NewMemory()
	changes, cancel := s.Subscribe()

	require.NoError(t, s.Set(store.AccessTokenKey, "a1"))
	requireSignal(t, changes)

	// same value is not a change
	require.NoError(t, s.Set(store.AccessTokenKey, "a1"))
	requireNoSignal(t, changes)

	cancel()
	cancel()
	_, open := <-changes
	require.False(t, open)
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	first, err := store.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(store.AccessTokenKey, "a1"))
	require.NoError(t, first.Set(store.RefreshTokenKey, "r1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := store.OpenFile(path)
	require.NoError(t, err)
	v, ok := second.Get(store.RefreshTokenKey)
	require.True(t, ok)
	require.Equal(t, "r1", v)
}

func TestFile_WatchSeesOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	watched, err := store.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watched.Close() })
	require.NoError(t, watched.Watch())

	changes, cancel := watched.Subscribe()
	defer cancel()

	other, err := store.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, other.Set(store.AccessTokenKey, "from-other-tab"))

	requireSignal(t, changes)
	v, ok := watched.Get(store.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, "from-other-tab", v)
}

func TestFile_UnsubscribeAfterClose(t *testing.T) {
	f := openFile(t)
	require.NoError(t, f.Watch())
	changes, cancel := f.Subscribe()

	require.NoError(t, f.Close())
	_, open := <-changes
	require.False(t, open, "Close ends the subscription")

	require.NotPanics(t, cancel)
	require.NotPanics(t, cancel)
}

func TestMemory_UnsubscribeTwice(t *testing.T) {
	m := store.NewMemory()
	changes, cancel := m.Subscribe()
	cancel()
	require.NotPanics(t, cancel)

	require.NoError(t, m.Set(store.AccessTokenKey, "a1"))
	_, open := <-changes
	require.False(t, open)
}

func openFile(t *testing.T) *store.File {
	t.Helper()
	f, err := store.OpenFile(filepath.Join(t.TempDir(), "nested", "session.yaml"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func requireSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func requireNoSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected change notification")
	case <-time.After(50 * time.Millisecond):
	}
}
