package token

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func testRecord(tok string) Record {
	return Record{
		Token:     tok,
		Timestamp: time.Now().UTC(),
		Source:    SourceDirect,
		IsValid:   true,
	}
}

func TestStoreAddAndList(t *testing.T) {
	s := newTestStore(t)

	added, err := s.Add(testRecord("one"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(testRecord("two"))
	require.NoError(t, err)
	assert.True(t, added)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "two", records[0].Token, "newest first")
	assert.Equal(t, "one", records[1].Token)
}

func TestStoreDuplicateIsNoOp(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(testRecord("one"))
	require.NoError(t, err)
	_, err = s.Add(testRecord("two"))
	require.NoError(t, err)

	added, err := s.Add(testRecord("one"))
	require.NoError(t, err)
	assert.False(t, added)

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "two", records[0].Token, "duplicate must not reorder")
}

func TestStoreEvictsOldestPastCap(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < MaxRecords+3; i++ {
		_, err := s.Add(testRecord(fmt.Sprintf("tok-%d", i)))
		require.NoError(t, err)
	}

	records, err := s.List()
	require.NoError(t, err)
	require.Len(t, records, MaxRecords)
	assert.Equal(t, fmt.Sprintf("tok-%d", MaxRecords+2), records[0].Token)
	assert.Equal(t, "tok-3", records[MaxRecords-1].Token, "oldest entries evicted")
}

func TestStoreRemove(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(testRecord("one"))
	require.NoError(t, err)

	removed, err := s.Remove("one")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove("missing")
	require.NoError(t, err)
	assert.False(t, removed)

	records, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(testRecord("one"))
	require.NoError(t, err)
	_, err = s.Add(testRecord("two"))
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	records, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1, err := NewStore(dir)
	require.NoError(t, err)
	_, err = s1.Add(testRecord("survivor"))
	require.NoError(t, err)

	s2, err := NewStore(dir)
	require.NoError(t, err)
	records, err := s2.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "survivor", records[0].Token)
}

func TestStorePrefs(t *testing.T) {
	s := newTestStore(t)

	show, err := s.ShowButtons()
	require.NoError(t, err)
	assert.True(t, show, "missing prefs default to showing buttons")

	require.NoError(t, s.SetShowButtons(false))

	show, err = s.ShowButtons()
	require.NoError(t, err)
	assert.False(t, show)
}
