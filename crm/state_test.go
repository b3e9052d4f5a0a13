package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/models"
	"github.com/sustentalski/salescrm/store"
)

var fixedNow = time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)

func newTestState(t *testing.T) (*State, *store.Memory) {
	t.Helper()
	kv := store.NewMemory()
	return Open(kv, WithClock(func() time.Time { return fixedNow })), kv
}

func mustAddClient(t *testing.T, s *State, name string) models.Client {
	t.Helper()
	c, err := s.AddClient(models.Client{Name: name})
	require.NoError(t, err)
	return c
}

func TestOpenEmptyStore(t *testing.T) {
	s, _ := newTestState(t)

	assert.Empty(t, s.Clients())
	assert.Empty(t, s.Followups())
	assert.Empty(t, s.Agenda())
	assert.Empty(t, s.Campaigns())
	assert.Empty(t, s.Strategies())
	assert.Empty(t, s.Analyses())
	assert.False(t, s.LoggedIn())
}

func TestOpenCorruptCollectionFallsBack(t *testing.T) {
	kv := store.NewMemory()
	require.NoError(t, kv.Set(KeyClients, []byte("not json")))

	s := Open(kv)
	assert.Empty(t, s.Clients())
}

func TestAddClientPrependsAndPersists(t *testing.T) {
	s, kv := newTestState(t)

	first := mustAddClient(t, s, "Ana Silva")
	second := mustAddClient(t, s, "Bruno Costa")

	clients := s.Clients()
	require.Len(t, clients, 2)
	assert.Equal(t, second.ID, clients[0].ID)
	assert.Equal(t, first.ID, clients[1].ID)
	assert.True(t, models.HasPrefix(first.ID, models.PrefixClient))

	reopened := Open(kv)
	assert.Len(t, reopened.Clients(), 2)
}

func TestAddClientRequiresName(t *testing.T) {
	s, _ := newTestState(t)

	_, err := s.AddClient(models.Client{Phone: "123"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRequiredField))
	assert.Empty(t, s.Clients())
	assert.Empty(t, s.Followups())
}

func TestDeleteClientKeepsFollowup(t *testing.T) {
	s, _ := newTestState(t)
	c := mustAddClient(t, s, "Ana Silva")

	require.NoError(t, s.DeleteClient(c.ID))
	assert.Empty(t, s.Clients())
	require.Len(t, s.Followups(), 1)
	assert.Len(t, s.OrphanFollowups(), 1)

	err := s.DeleteClient(c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchClients(t *testing.T) {
	s, _ := newTestState(t)
	_, err := s.AddClient(models.Client{Name: "Ana Silva", Company: "Solar Ltda"})
	require.NoError(t, err)
	mustAddClient(t, s, "Bruno Costa")

	assert.Len(t, s.SearchClients(""), 2)
	assert.Len(t, s.SearchClients("SOLAR"), 1)
	assert.Empty(t, s.SearchClients("zzz"))
}

func TestAgendaLifecycle(t *testing.T) {
	s, _ := newTestState(t)

	item, err := s.AddAgendaItem(models.AgendaItem{ContactName: "Carla", Datetime: "2025-01-10T09:00"})
	require.NoError(t, err)
	assert.Equal(t, models.ContactCall, item.ContactType)
	assert.Equal(t, models.PriorityMedium, item.Priority)
	assert.False(t, item.Done)

	toggled, err := s.ToggleAgendaDone(item.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	got, err := s.GetAgendaItem(item.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)

	assert.Len(t, s.SearchAgenda("carla"), 1)

	require.NoError(t, s.DeleteAgendaItem(item.ID))
	assert.Empty(t, s.Agenda())
	_, err = s.ToggleAgendaDone(item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgendaRequiresContactName(t *testing.T) {
	s, _ := newTestState(t)
	_, err := s.AddAgendaItem(models.AgendaItem{Notes: "x"})
	assert.ErrorIs(t, err, models.ErrRequiredField)
}

func TestAgendaDraftFromClient(t *testing.T) {
	s, _ := newTestState(t)
	c, err := s.AddClient(models.Client{Name: "Ana", Phone: "11 9999", Email: "ana@x.com", Company: "ACME"})
	require.NoError(t, err)

	draft, err := s.AgendaDraftFromClient(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", draft.ContactName)
	assert.Equal(t, "11 9999", draft.Phone)
	assert.Equal(t, "ana@x.com", draft.Email)
	assert.Equal(t, "ACME", draft.Company)
	assert.Empty(t, draft.ID)
	assert.Empty(t, s.Agenda())
}

func TestCampaignSaveAndEdit(t *testing.T) {
	s, _ := newTestState(t)

	created, err := s.SaveCampaign(models.Campaign{Name: "Verão"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanned, created.Status)
	_, err = s.AddCampaign(models.Campaign{Name: "Inverno"})
	require.NoError(t, err)

	edit := created
	edit.Name = "Verão 2025"
	edit.Status = models.StatusActive
	edit.CreatedAt = models.Timestamp{}
	updated, err := s.SaveCampaign(edit)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	list := s.Campaigns()
	require.Len(t, list, 2)
	assert.Equal(t, "Verão 2025", list[1].Name, "edit keeps position")

	_, err = s.UpdateCampaign(models.Campaign{ID: "camp_missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.SaveCampaign(models.Campaign{})
	assert.ErrorIs(t, err, models.ErrRequiredField)
}

func TestStrategyResolvesCampaignName(t *testing.T) {
	s, _ := newTestState(t)
	camp, err := s.AddCampaign(models.Campaign{Name: "Verão"})
	require.NoError(t, err)

	linked, err := s.AddStrategy(models.Strategy{WeekRange: "06/01 - 12/01", CampaignID: camp.ID})
	require.NoError(t, err)
	assert.Equal(t, "Verão", linked.Campaign)

	other, err := s.AddStrategy(models.Strategy{WeekRange: "13/01 - 19/01", CampaignID: OtherCampaign})
	require.NoError(t, err)
	assert.Equal(t, OtherCampaign, other.Campaign)

	require.NoError(t, s.DeleteCampaign(camp.ID))
	assert.Equal(t, "Verão", s.Strategies()[1].Campaign)

	assert.Len(t, s.SearchStrategies("verão"), 1)
	require.NoError(t, s.DeleteStrategy(other.ID))
	assert.Len(t, s.Strategies(), 1)

	_, err = s.AddStrategy(models.Strategy{Names: "no week"})
	assert.ErrorIs(t, err, models.ErrRequiredField)
}

type stubAnalyzer struct {
	text string
	err  error
}

func (a stubAnalyzer) Analyze(_ context.Context, fileName, _ string) (string, error) {
	return a.text + " " + fileName, a.err
}

func TestAnalyzeSavesResult(t *testing.T) {
	s, _ := newTestState(t)

	a, err := s.Analyze(context.Background(), stubAnalyzer{text: "ok"}, "notes.txt", "content")
	require.NoError(t, err)
	assert.Equal(t, "ok notes.txt", a.Content)
	assert.Equal(t, "notes.txt", a.FileName)
	require.Len(t, s.Analyses(), 1)

	_, err = s.Analyze(context.Background(), stubAnalyzer{err: errors.New("boom")}, "x.txt", "")
	assert.Error(t, err)
	assert.Len(t, s.Analyses(), 1)

	require.NoError(t, s.DeleteAnalysis(a.ID))
	assert.Empty(t, s.Analyses())
}

func newSeededKV(t *testing.T, clients, followups string) *store.Memory {
	t.Helper()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(KeyClients, []byte(clients)))
	require.NoError(t, kv.Set(KeyFollowups, []byte(followups)))
	return kv
}
