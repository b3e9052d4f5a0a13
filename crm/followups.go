// ABOUTME: Follow-up records: auto-provisioning per client and field-level edits
// ABOUTME: Reconciliation is idempotent and never removes orphaned records
package crm

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/sustentalski/salescrm/models"
)

var (
	// ErrUnknownField is returned for a field name the sheet does not have.
	ErrUnknownField = errors.New("unknown follow-up field")
	// ErrInvalidValue is returned when a value is outside the field's options.
	ErrInvalidValue = errors.New("invalid value for field")
)

func followupID(f models.FollowupRecord) string { return f.ID }

// FieldKind describes how a follow-up field is edited.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldDate
	FieldAnswer
	FieldOutlook
	FieldProduct
	FieldNumber
)

// FollowupField is one editable column of the follow-up sheet.
type FollowupField struct {
	Name  string
	Label string
	Kind  FieldKind
}

// Options lists the accepted values for choice fields.
func (f FollowupField) Options() []string {
	switch f.Kind {
	case FieldAnswer:
		return []string{string(models.Yes), string(models.No)}
	case FieldOutlook:
		return []string{string(models.OutlookYes), string(models.OutlookWarm), string(models.OutlookNo)}
	case FieldProduct:
		opts := []string{""}
		for _, p := range models.AllProducts {
			opts = append(opts, string(p))
		}
		return opts
	default:
		return nil
	}
}

// FollowupFields lists the sheet columns in display order.
var FollowupFields = []FollowupField{
	{"accountType", "Tipo de conta", FieldProduct},
	{"accountValue", "Valor da conta", FieldText},
	{"firstContact", "1º contato", FieldDate},
	{"sentInvoice", "Enviou fatura", FieldAnswer},
	{"proposalReady", "Proposta pronta", FieldAnswer},
	{"clientPresentation", "Apresentação", FieldAnswer},
	{"willClose", "Vai fechar", FieldOutlook},
	{"sentDocuments", "Enviou docs", FieldAnswer},
	{"signedContract", "Assinou contrato", FieldAnswer},
	{"contractSignatureDate", "Data assinatura", FieldDate},
	{"doesntWantProduct", "Não quer produto", FieldAnswer},
	{"feedback", "Feedback", FieldText},
	{"returnDays", "Retorno (dias)", FieldText},
	{"paid", "Pago", FieldAnswer},
	{"estimatedValue", "Valor estimado", FieldNumber},
	{"commissionPercent", "Comissão %", FieldNumber},
}

// LookupFollowupField finds a field by its JSON name.
func LookupFollowupField(name string) (FollowupField, bool) {
	for _, f := range FollowupFields {
		if f.Name == name {
			return f, true
		}
	}
	return FollowupField{}, false
}

// ReconcileFollowups appends a default record for every client that has
// none. Running it again with the same clients adds nothing. Records whose
// client no longer exists are kept. Returns the records it created.
func (s *State) ReconcileFollowups() []models.FollowupRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients.Get()
	existing := s.followups.Get()

	covered := make(map[string]bool, len(existing))
	for _, f := range existing {
		covered[f.ClientID] = true
	}

	var created []models.FollowupRecord
	// Clients are stored newest first; provision oldest first so the sheet
	// keeps registration order.
	for i := len(clients) - 1; i >= 0; i-- {
		c := clients[i]
		if covered[c.ID] {
			continue
		}
		covered[c.ID] = true
		created = append(created, models.NewFollowupFor(c, s.stamp()))
	}

	if len(created) > 0 {
		s.followups.Update(func(list []models.FollowupRecord) []models.FollowupRecord {
			out := slices.Clone(list)
			return append(out, created...)
		})
	}
	return created
}

// Followups returns every record in sheet order.
func (s *State) Followups() []models.FollowupRecord {
	return s.followups.Get()
}

// GetFollowup looks up a record by id.
func (s *State) GetFollowup(id string) (models.FollowupRecord, error) {
	f, ok := find(s.followups.Get(), id, followupID)
	if !ok {
		return models.FollowupRecord{}, fmt.Errorf("follow-up %s: %w", id, ErrNotFound)
	}
	return f, nil
}

// FollowupForClient returns the record provisioned for a client.
func (s *State) FollowupForClient(clientID string) (models.FollowupRecord, error) {
	for _, f := range s.followups.Get() {
		if f.ClientID == clientID {
			return f, nil
		}
	}
	return models.FollowupRecord{}, fmt.Errorf("follow-up for client %s: %w", clientID, ErrNotFound)
}

// OrphanFollowups returns records whose client has been deleted.
func (s *State) OrphanFollowups() []models.FollowupRecord {
	ids := make(map[string]bool)
	for _, c := range s.clients.Get() {
		ids[c.ID] = true
	}
	var out []models.FollowupRecord
	for _, f := range s.followups.Get() {
		if !ids[f.ClientID] {
			out = append(out, f)
		}
	}
	return out
}

// UpdateFollowupField sets one field, named by its JSON name, from form input.
func (s *State) UpdateFollowupField(id, field, value string) (models.FollowupRecord, error) {
	def, ok := LookupFollowupField(field)
	if !ok {
		return models.FollowupRecord{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if opts := def.Options(); opts != nil && !slices.Contains(opts, value) {
		return models.FollowupRecord{}, fmt.Errorf("%w %s: %q", ErrInvalidValue, field, value)
	}

	var updated models.FollowupRecord
	var found bool
	s.followups.Update(func(list []models.FollowupRecord) []models.FollowupRecord {
		out, ok := replaced(list, id, followupID, func(f models.FollowupRecord) models.FollowupRecord {
			setFollowupField(&f, field, value)
			updated = f
			return f
		})
		found = ok
		return out
	})
	if !found {
		return models.FollowupRecord{}, fmt.Errorf("follow-up %s: %w", id, ErrNotFound)
	}
	return updated, nil
}

func setFollowupField(f *models.FollowupRecord, field, value string) {
	switch field {
	case "accountType":
		f.AccountType = models.Product(value)
	case "accountValue":
		f.AccountValue = value
	case "firstContact":
		f.FirstContact = value
	case "sentInvoice":
		f.SentInvoice = models.Answer(value)
	case "proposalReady":
		f.ProposalReady = models.Answer(value)
	case "clientPresentation":
		f.ClientPresentation = models.Answer(value)
	case "willClose":
		f.WillClose = models.Outlook(value)
	case "sentDocuments":
		f.SentDocuments = models.Answer(value)
	case "signedContract":
		f.SignedContract = models.Answer(value)
	case "contractSignatureDate":
		f.ContractSignatureDate = value
	case "doesntWantProduct":
		f.DoesntWantProduct = models.Answer(value)
	case "feedback":
		f.Feedback = value
	case "returnDays":
		f.ReturnDays = value
	case "paid":
		f.Paid = models.Answer(value)
	case "estimatedValue":
		f.EstimatedValue = models.ParseNumber(value)
	case "commissionPercent":
		pct := models.ParseNumber(value)
		f.CommissionPercent = &pct
	}
}

// FollowupFieldValue renders a field for display or export.
func FollowupFieldValue(f models.FollowupRecord, field string) string {
	switch field {
	case "accountType":
		return string(f.AccountType)
	case "accountValue":
		return f.AccountValue
	case "firstContact":
		return f.FirstContact
	case "sentInvoice":
		return answerOrNo(f.SentInvoice)
	case "proposalReady":
		return answerOrNo(f.ProposalReady)
	case "clientPresentation":
		return answerOrNo(f.ClientPresentation)
	case "willClose":
		if f.WillClose == "" {
			return string(models.OutlookNo)
		}
		return string(f.WillClose)
	case "sentDocuments":
		return answerOrNo(f.SentDocuments)
	case "signedContract":
		return answerOrNo(f.SignedContract)
	case "contractSignatureDate":
		return f.ContractSignatureDate
	case "doesntWantProduct":
		return answerOrNo(f.DoesntWantProduct)
	case "feedback":
		return f.Feedback
	case "returnDays":
		return f.ReturnDays
	case "paid":
		return answerOrNo(f.Paid)
	case "estimatedValue":
		return strconv.FormatFloat(f.EstimatedValue.Float(), 'f', -1, 64)
	case "commissionPercent":
		return strconv.FormatFloat(f.Commission(), 'f', -1, 64)
	default:
		return ""
	}
}

func answerOrNo(a models.Answer) string {
	if a == "" {
		return string(models.No)
	}
	return string(a)
}

// DeleteFollowup removes a record. A client that still exists gets a fresh
// default record from the reconciliation that follows.
func (s *State) DeleteFollowup(id string) error {
	var found bool
	s.followups.Update(func(list []models.FollowupRecord) []models.FollowupRecord {
		out, ok := without(list, id, followupID)
		found = ok
		return out
	})
	if !found {
		return fmt.Errorf("follow-up %s: %w", id, ErrNotFound)
	}
	s.ReconcileFollowups()
	return nil
}

// SearchFollowups filters by client name, account type and feedback.
func (s *State) SearchFollowups(query string) []models.FollowupRecord {
	return filter(s.followups.Get(), query, func(f models.FollowupRecord) []string {
		return []string{f.ClientName, string(f.AccountType), f.Feedback}
	})
}
