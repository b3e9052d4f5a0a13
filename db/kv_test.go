// ABOUTME: Tests for the SQLite key-value store
// ABOUTME: Exercises upsert, not-found mapping and the reactive binding on top
package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/store"
)

func TestKVStoreRoundTrip(t *testing.T) {
	kv := NewKVStore(openMemory(t))

	_, err := kv.Get("sust_v2_clients")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, kv.Set("sust_v2_clients", []byte(`[{"id":"client_1"}]`)))
	require.NoError(t, kv.Set("sust_v2_clients", []byte(`[]`)))

	v, err := kv.Get("sust_v2_clients")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(v))

	require.NoError(t, kv.Set("sust_v2_agenda", []byte(`[]`)))
	keys, err := kv.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"sust_v2_agenda", "sust_v2_clients"}, keys)

	require.NoError(t, kv.Delete("sust_v2_agenda"))
	_, err = kv.Get("sust_v2_agenda")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestKVStoreBackedBinding(t *testing.T) {
	kv := NewKVStore(openMemory(t))

	b := store.Bind(kv, "sust_v2_loggedInUser", func() string { return "" }, nil)
	assert.Equal(t, "", b.Get())
	b.Set("ana")

	again := store.Bind(kv, "sust_v2_loggedInUser", func() string { return "" }, nil)
	assert.Equal(t, "ana", again.Get())
}
