package statestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIsNewStatusFirstCallIsNew(t *testing.T) {
	s := openTestStore(t)
	isNew, err := s.IsNewStatus("addr1", "OK")
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestIsNewStatusRepeatedCallIsNotNew(t *testing.T) {
	s := openTestStore(t)
	_, err := s.IsNewStatus("addr1", "OK")
	require.NoError(t, err)
	isNew, err := s.IsNewStatus("addr1", "OK")
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestIsNewStatusChangeIsNew(t *testing.T) {
	s := openTestStore(t)
	_, err := s.IsNewStatus("addr1", "OK")
	require.NoError(t, err)
	isNew, err := s.IsNewStatus("addr1", "LEAK")
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestClearStatusResetsDedup(t *testing.T) {
	s := openTestStore(t)
	_, err := s.IsNewStatus("addr1", "OK")
	require.NoError(t, err)
	require.NoError(t, s.ClearStatus("addr1"))
	isNew, err := s.IsNewStatus("addr1", "OK")
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.PutSnapshot("addr1", []byte(`{"total":1.5}`)))
	doc, err := s.LastSnapshot("addr1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1.5}`, string(doc))
}

func TestLastSnapshotMissingReturnsNil(t *testing.T) {
	s := openTestStore(t)
	doc, err := s.LastSnapshot("unknown")
	require.NoError(t, err)
	assert.Nil(t, doc)
}
