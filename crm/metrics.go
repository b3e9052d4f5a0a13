// ABOUTME: Derived pipeline metrics over follow-up records
// ABOUTME: Pure, order-independent counts, conversion rate and commission totals
package crm

import (
	"math"

	"github.com/sustentalski/salescrm/models"
)

// Metrics summarizes the follow-up sheet.
type Metrics struct {
	TotalIndications int     `json:"totalIndications"`
	ClosedCount      int     `json:"closedCount"`
	ConversionRate   float64 `json:"conversionRate"`
	TotalEstimated   float64 `json:"totalEstimated"`
	TotalCommission  float64 `json:"totalCommission"`
	Funnel           Funnel  `json:"funnel"`
}

// Funnel counts records at each pipeline stage.
type Funnel struct {
	SentInvoice        int `json:"sentInvoice"`
	ProposalReady      int `json:"proposalReady"`
	ClientPresentation int `json:"clientPresentation"`
	WarmLeads          int `json:"warmLeads"`
	WillClose          int `json:"willClose"`
	SentDocuments      int `json:"sentDocuments"`
	SignedContract     int `json:"signedContract"`
	Paid               int `json:"paid"`
	DoesntWantProduct  int `json:"doesntWantProduct"`
}

// ComputeMetrics derives the header and dashboard numbers.
//
// conversionRate is closed/total as a percentage with one decimal, 0 for an
// empty sheet. Unset commission percentages count as 10.
func ComputeMetrics(records []models.FollowupRecord) Metrics {
	var m Metrics
	m.TotalIndications = len(records)

	for _, f := range records {
		if f.Closed() {
			m.ClosedCount++
		}
		m.TotalEstimated += f.EstimatedValue.Float()
		m.TotalCommission += f.CommissionValue()
		m.Funnel.add(f)
	}

	if m.TotalIndications > 0 {
		m.ConversionRate = math.Round(float64(m.ClosedCount)/float64(m.TotalIndications)*1000) / 10
	}
	return m
}

func (fn *Funnel) add(f models.FollowupRecord) {
	if f.SentInvoice == models.Yes {
		fn.SentInvoice++
	}
	if f.ProposalReady == models.Yes {
		fn.ProposalReady++
	}
	if f.ClientPresentation == models.Yes {
		fn.ClientPresentation++
	}
	switch f.WillClose {
	case models.OutlookYes:
		fn.WillClose++
	case models.OutlookWarm:
		fn.WarmLeads++
	}
	if f.SentDocuments == models.Yes {
		fn.SentDocuments++
	}
	if f.SignedContract == models.Yes {
		fn.SignedContract++
	}
	if f.Paid == models.Yes {
		fn.Paid++
	}
	if f.DoesntWantProduct == models.Yes {
		fn.DoesntWantProduct++
	}
}

// Metrics computes metrics over the current follow-up sheet.
func (s *State) Metrics() Metrics {
	return ComputeMetrics(s.followups.Get())
}
