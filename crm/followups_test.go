package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/models"
)

func TestNewClientGetsDefaultFollowup(t *testing.T) {
	s, _ := newTestState(t)
	c := mustAddClient(t, s, "Ana Silva")

	records := s.Followups()
	require.Len(t, records, 1)
	f := records[0]
	assert.Equal(t, c.ID, f.ClientID)
	assert.Equal(t, "Ana Silva", f.ClientName)
	assert.Equal(t, models.No, f.SignedContract)
	assert.Equal(t, models.OutlookNo, f.WillClose)
	assert.Equal(t, float64(10), f.Commission())
	require.NotNil(t, f.CommissionPercent)
	assert.True(t, models.HasPrefix(f.ID, models.PrefixFollowup))
}

func TestReconcileIsIdempotent(t *testing.T) {
	s, _ := newTestState(t)
	mustAddClient(t, s, "Ana")
	mustAddClient(t, s, "Bruno")

	assert.Empty(t, s.ReconcileFollowups())
	assert.Empty(t, s.ReconcileFollowups())
	assert.Len(t, s.Followups(), 2)
}

func TestReconcileOnOpen(t *testing.T) {
	kv := newSeededKV(t, `[{"id":"client_1","name":"Ana"},{"id":"client_2","name":"Bruno"}]`, `[{"id":"f_1","clientId":"client_2","clientName":"Bruno"}]`)

	s := Open(kv)
	records := s.Followups()
	require.Len(t, records, 2)
	assert.Equal(t, "f_1", records[0].ID)
	assert.Equal(t, "client_1", records[1].ClientID)
}

func TestReconcileProvisionsInRegistrationOrder(t *testing.T) {
	kv := newSeededKV(t, `[{"id":"client_new","name":"Newest"},{"id":"client_old","name":"Oldest"}]`, `[]`)

	s := Open(kv)
	records := s.Followups()
	require.Len(t, records, 2)
	assert.Equal(t, "Oldest", records[0].ClientName)
	assert.Equal(t, "Newest", records[1].ClientName)
}

func TestUpdateFollowupField(t *testing.T) {
	s, _ := newTestState(t)
	c := mustAddClient(t, s, "Ana")
	f, err := s.FollowupForClient(c.ID)
	require.NoError(t, err)

	updated, err := s.UpdateFollowupField(f.ID, "signedContract", "SIM")
	require.NoError(t, err)
	assert.True(t, updated.Closed())

	updated, err = s.UpdateFollowupField(f.ID, "estimatedValue", "1500,50")
	require.NoError(t, err)
	assert.InDelta(t, 1500.5, updated.EstimatedValue.Float(), 1e-9)

	updated, err = s.UpdateFollowupField(f.ID, "commissionPercent", "abc")
	require.NoError(t, err)
	assert.Equal(t, float64(0), updated.Commission())

	_, err = s.UpdateFollowupField(f.ID, "willClose", "TALVEZ")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = s.UpdateFollowupField(f.ID, "nope", "x")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = s.UpdateFollowupField("f_missing", "feedback", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := s.GetFollowup(f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Yes, stored.SignedContract)
}

func TestDeleteFollowupReprovisionsLiveClient(t *testing.T) {
	s, _ := newTestState(t)
	c := mustAddClient(t, s, "Ana")
	f, err := s.FollowupForClient(c.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteFollowup(f.ID))
	records := s.Followups()
	require.Len(t, records, 1)
	assert.NotEqual(t, f.ID, records[0].ID)
	assert.Equal(t, c.ID, records[0].ClientID)
}

func TestFollowupFieldValueDefaults(t *testing.T) {
	var f models.FollowupRecord
	assert.Equal(t, "NÃO", FollowupFieldValue(f, "paid"))
	assert.Equal(t, "NÃO", FollowupFieldValue(f, "willClose"))
	assert.Equal(t, "10", FollowupFieldValue(f, "commissionPercent"))
	assert.Equal(t, "0", FollowupFieldValue(f, "estimatedValue"))
	assert.Equal(t, "", FollowupFieldValue(f, "unknown"))
}

func TestFollowupFieldsAreEditable(t *testing.T) {
	for _, fld := range FollowupFields {
		got, ok := LookupFollowupField(fld.Name)
		require.True(t, ok, fld.Name)
		assert.Equal(t, fld, got)
	}
	answer, _ := LookupFollowupField("paid")
	assert.Equal(t, []string{"SIM", "NÃO"}, answer.Options())
	text, _ := LookupFollowupField("feedback")
	assert.Nil(t, text.Options())
}

func TestSearchFollowups(t *testing.T) {
	s, _ := newTestState(t)
	mustAddClient(t, s, "Ana")
	c := mustAddClient(t, s, "Bruno")
	f, err := s.FollowupForClient(c.ID)
	require.NoError(t, err)
	_, err = s.UpdateFollowupField(f.ID, "feedback", "Pediu desconto")
	require.NoError(t, err)

	assert.Len(t, s.SearchFollowups("desconto"), 1)
	assert.Len(t, s.SearchFollowups(""), 2)
}
