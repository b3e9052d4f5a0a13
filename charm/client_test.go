// ABOUTME: Tests for the badger-backed KV client
// ABOUTME: Covers not-found mapping, key listing, reset and config persistence
package charm

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/store"
)

func TestClientGetMissingKey(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	_, err := c.Get("sust_v2_clients")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientSetGetDelete(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set("sust_v2_clients", []byte(`[]`)))
	require.NoError(t, c.Set("sust_v2_agenda", []byte(`[{"id":"a_1"}]`)))

	v, err := c.Get("sust_v2_agenda")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a_1"}]`, string(v))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"sust_v2_agenda", "sust_v2_clients"}, keys)

	require.NoError(t, c.Delete("sust_v2_agenda"))
	_, err = c.Get("sust_v2_agenda")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestClientReset(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Reset())

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestLocalClientIsNotRemote(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	assert.False(t, c.Remote())
	assert.False(t, c.IsConnected())
	assert.NoError(t, c.Sync())
}

func TestBindingOverClient(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	b := store.Bind(c, "sust_v2_users", func() map[string]string { return map[string]string{} }, nil)
	b.Update(func(m map[string]string) map[string]string {
		m["ana"] = "x"
		return m
	})

	again := store.Bind(c, "sust_v2_users", func() map[string]string { return map[string]string{} }, nil)
	assert.Equal(t, map[string]string{"ana": "x"}, again.Get())
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)

	cfg, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, BackendCharm, cfg.Backend)
	assert.Equal(t, DefaultCharmHost, cfg.Host)

	cfg.Backend = BackendSQLite
	cfg.AutoSync = false
	require.NoError(t, cfg.saveTo(path))

	loaded, err := loadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, loaded.Backend)
	assert.False(t, loaded.AutoSync)
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("local")
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, b)

	_, err = ParseBackend("redis")
	assert.Error(t, err)
}

func TestCRMCollectionsSkipsForeignKeys(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set("sust_v2_clients", []byte(`[{"id":"c_1"},{"id":"c_2"}]`)))
	require.NoError(t, c.Set("sust_v2_users", []byte(`{"ana":{},"bia":{},"caio":{}}`)))
	require.NoError(t, c.Set("sust_v2_loggedInUser", []byte(`"ana"`)))
	require.NoError(t, c.Set("unrelated", []byte(`[1,2,3]`)))

	cols, err := CRMCollections(c)
	require.NoError(t, err)
	require.Len(t, cols, 3)

	assert.Equal(t, "sust_v2_clients", cols[0].Key)
	assert.Equal(t, 2, cols[0].Records)
	assert.Equal(t, "clients", cols[0].Label)
	assert.Equal(t, "sust_v2_users", cols[1].Key)
	assert.Equal(t, 3, cols[1].Records)
	assert.Equal(t, "sust_v2_loggedInUser", cols[2].Key)
	assert.Equal(t, 1, cols[2].Records)
}

func TestWipeListsRemovedCollections(t *testing.T) {
	c, cleanup := NewTestClient(t)
	defer cleanup()

	require.NoError(t, c.Set("sust_v2_agenda", []byte(`[{"id":"a_1"}]`)))
	require.NoError(t, c.Set("sust_v2_campaigns", []byte(`[]`)))

	var out bytes.Buffer
	require.NoError(t, wipe(&out, c))

	assert.Contains(t, out.String(), "Removed 2 CRM collections")
	assert.Contains(t, out.String(), "sust_v2_agenda")
	assert.Contains(t, out.String(), "sust_v2_campaigns")

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestPrintCollectionsEmpty(t *testing.T) {
	var out bytes.Buffer
	printCollections(&out, nil)
	assert.Contains(t, out.String(), "no CRM collections")
}

func TestChangedCollections(t *testing.T) {
	before := []Collection{
		{Key: "sust_v2_clients", Records: 2, Bytes: 30},
		{Key: "sust_v2_agenda", Records: 1, Bytes: 12},
	}
	after := []Collection{
		{Key: "sust_v2_clients", Records: 2, Bytes: 30},
		{Key: "sust_v2_agenda", Records: 3, Bytes: 40},
		{Key: "sust_v2_campaigns", Records: 1, Bytes: 20},
	}

	changed := changedCollections(before, after)
	require.Len(t, changed, 2)
	assert.Equal(t, "sust_v2_agenda", changed[0].Key)
	assert.Equal(t, "sust_v2_campaigns", changed[1].Key)
	assert.Empty(t, changedCollections(after, after))
}
