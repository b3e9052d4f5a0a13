package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/models"
)

func TestClientHistory(t *testing.T) {
	s, _ := newTestState(t)
	c := mustAddClient(t, s, "Ana Silva")
	f, err := s.FollowupForClient(c.ID)
	require.NoError(t, err)
	_, err = s.UpdateFollowupField(f.ID, "feedback", "Quer proposta")
	require.NoError(t, err)

	_, err = s.AddAgendaItem(models.AgendaItem{ContactName: "ana silva", Datetime: "2025-02-01T10:00", Notes: "Visita"})
	require.NoError(t, err)
	_, err = s.AddAgendaItem(models.AgendaItem{ContactName: "Ana Silva"})
	require.NoError(t, err)
	_, err = s.AddAgendaItem(models.AgendaItem{ContactName: "Bruno"})
	require.NoError(t, err)

	history := s.ClientHistory("Ana")
	require.Len(t, history, 3)

	assert.Equal(t, HistoryAgenda, history[0].Kind)
	assert.Equal(t, "Visita", history[0].Description)
	assert.True(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.Local).Equal(history[0].Date))

	kinds := []string{history[1].Kind, history[2].Kind}
	assert.ElementsMatch(t, []string{HistoryAgenda, HistoryFollowup}, kinds)
	for _, h := range history[1:] {
		if h.Kind == HistoryAgenda {
			assert.Equal(t, "Sem notas", h.Description)
		} else {
			assert.Equal(t, "Quer proposta", h.Description)
		}
	}

	assert.Empty(t, s.ClientHistory("  "))
}
