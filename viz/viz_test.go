package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/models"
	"github.com/sustentalski/salescrm/store"
)

var now = time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)

func seededState(t *testing.T) *crm.State {
	t.Helper()
	s := crm.Open(store.NewMemory(), crm.WithClock(func() time.Time { return now }))

	c, err := s.AddClient(models.Client{Name: "Ana Silva", Company: "Solar"})
	require.NoError(t, err)
	f, err := s.FollowupForClient(c.ID)
	require.NoError(t, err)
	_, err = s.UpdateFollowupField(f.ID, "signedContract", "SIM")
	require.NoError(t, err)
	_, err = s.UpdateFollowupField(f.ID, "estimatedValue", "5000")
	require.NoError(t, err)
	_, err = s.AddClient(models.Client{Name: "Bruno"})
	require.NoError(t, err)

	camp, err := s.AddCampaign(models.Campaign{Name: "Verão", Status: models.StatusActive})
	require.NoError(t, err)
	_, err = s.AddStrategy(models.Strategy{
		WeekRange:  "06/01 - 12/01",
		CampaignID: camp.ID,
		Product:    models.ProductGD,
		Channels:   models.NewChannelSet(models.ChannelWhatsApp),
	})
	require.NoError(t, err)

	_, err = s.AddAgendaItem(models.AgendaItem{ContactName: "Ana Silva", Datetime: "2025-01-11T09:00"})
	require.NoError(t, err)
	_, err = s.AddAgendaItem(models.AgendaItem{ContactName: "Bruno", Datetime: "2025-03-01T09:00"})
	require.NoError(t, err)
	return s
}

func TestGenerateDashboardStats(t *testing.T) {
	stats := GenerateDashboardStats(seededState(t), now)

	assert.Equal(t, 2, stats.Metrics.TotalIndications)
	assert.Equal(t, 1, stats.Metrics.ClosedCount)
	assert.Equal(t, 2, stats.TotalClients)
	assert.Equal(t, 2, stats.OpenAgenda)
	require.Len(t, stats.Upcoming, 1)
	assert.Equal(t, "Ana Silva", stats.Upcoming[0].ContactName)
	require.Len(t, stats.ActiveCampaigns, 1)
}

func TestRenderDashboard(t *testing.T) {
	out := RenderDashboard(GenerateDashboardStats(seededState(t), now))

	assert.Contains(t, out, "SUSTENTALSKI CRM")
	assert.Contains(t, out, "Conversão: 50,0%")
	assert.Contains(t, out, "Valor estimado: R$ 5.000,00")
	assert.Contains(t, out, "Comissão: R$ 500,00")
	assert.Contains(t, out, "PRÓXIMOS 7 DIAS")
	assert.Contains(t, out, "• Verão")
}

func TestStageOf(t *testing.T) {
	assert.Equal(t, "Indicação", StageOf(models.FollowupRecord{}))
	assert.Equal(t, "Morno", StageOf(models.FollowupRecord{WillClose: models.OutlookWarm}))
	assert.Equal(t, "Pago", StageOf(models.FollowupRecord{SignedContract: models.Yes, Paid: models.Yes}))
	assert.Equal(t, "Não quer produto", StageOf(models.FollowupRecord{DoesntWantProduct: models.Yes, Paid: models.Yes}))
}

func TestGenerateGraphs(t *testing.T) {
	s := seededState(t)
	g := NewGraphGenerator(s, nil)

	dot, err := g.Generate(GraphCampaigns, "")
	require.NoError(t, err)
	assert.Contains(t, dot, "Verão")
	assert.Contains(t, dot, "WhatsApp")

	dot, err = g.Generate(GraphPipeline, "")
	require.NoError(t, err)
	assert.Contains(t, dot, "Assinou")

	client := s.Clients()[1]
	dot, err = g.Generate(GraphClient, client.ID)
	require.NoError(t, err)
	assert.Contains(t, dot, "Ana Silva")

	svg, err := g.GenerateSVG(GraphComplete, "")
	require.NoError(t, err)
	assert.True(t, strings.Contains(svg, "<svg"))

	_, err = g.Generate("nope", "")
	assert.Error(t, err)
	_, err = g.Generate(GraphClient, "")
	assert.Error(t, err)
}
