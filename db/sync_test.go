package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncStateLifecycle(t *testing.T) {
	db := openMemory(t)

	state, err := GetSyncState(db, "google-contacts")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, MarkSyncRunning(db, "google-contacts"))
	state, err = GetSyncState(db, "google-contacts")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, SyncRunning, state.Status)
	assert.Nil(t, state.LastSyncTime)

	require.NoError(t, MarkSyncFailed(db, "google-contacts", errors.New("token expired")))
	state, err = GetSyncState(db, "google-contacts")
	require.NoError(t, err)
	assert.Equal(t, SyncFailed, state.Status)
	assert.Equal(t, "token expired", state.ErrorMessage)

	require.NoError(t, MarkSyncDone(db, "google-contacts", 7))
	state, err = GetSyncState(db, "google-contacts")
	require.NoError(t, err)
	assert.Equal(t, SyncIdle, state.Status)
	assert.Empty(t, state.ErrorMessage)
	assert.Equal(t, 7, state.ItemsSynced)
	assert.NotNil(t, state.LastSyncTime)

	require.NoError(t, MarkSyncDone(db, "google-calendar", 2))
	states, err := ListSyncStates(db)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "google-calendar", states[0].Service)
}

func TestSyncLog(t *testing.T) {
	db := openMemory(t)

	_, found, err := FindSynced(db, "google-contacts", "people/c1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, RecordSynced(db, "google-contacts", "people/c1", "client", "client_1", ""))
	require.NoError(t, RecordSynced(db, "google-contacts", "people/c1", "client", "client_2", `{"etag":"x"}`))

	id, found, err := FindSynced(db, "google-contacts", "people/c1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "client_2", id)
}
