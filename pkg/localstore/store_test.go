package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGet_MissingKey(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAndGet(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("k", `{"a":1}`))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, v)
}

func TestSet_OverwritesWholeValue(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("k", "first"))
	require.NoError(t, s.Set("k", "second"))
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Remove("k"))
	_, err := s.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	// removing an absent key is not an error
	assert.NoError(t, s.Remove("k"))
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	v, err := s2.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}
