package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRememberAndRecent(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Remember("tatort"))
	require.NoError(t, s.Remember("tagesschau"))

	entries, err := s.Recent()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tagesschau", entries[0].Query)
	assert.Equal(t, "tatort", entries[1].Query)
}

func TestRememberMovesDuplicateToFront(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Remember("tatort"))
	require.NoError(t, s.Remember("tagesschau"))
	require.NoError(t, s.Remember("tatort"))

	entries, err := s.Recent()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tatort", entries[0].Query)
}

func TestRememberTrimsOldest(t *testing.T) {
	s := openTestStore(t)
	s.limit = 3

	for _, q := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Remember(q))
	}

	entries, err := s.Recent()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "d", entries[0].Query)
	assert.Equal(t, "b", entries[2].Query)
}

func TestRememberIgnoresBlank(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Remember("   "))
	entries, err := s.Recent()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNoopStoreWithoutDir(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Remember("tatort"))
	entries, err := s.Recent()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
