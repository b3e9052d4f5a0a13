// ABOUTME: Data models for the sales pipeline CRM
// ABOUTME: Defines Client, AgendaItem, FollowupRecord, Strategy, Campaign, Analysis and User
package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Answer is a SIM/NÃO pipeline flag.
type Answer string

// Answer constants.
const (
	Yes Answer = "SIM"
	No  Answer = "NÃO"
)

// Outlook is the willClose forecast.
type Outlook string

// Outlook constants.
const (
	OutlookYes  Outlook = "SIM"
	OutlookWarm Outlook = "MORNO"
	OutlookNo   Outlook = "NÃO"
)

// Product is one of the energy products the team sells.
type Product string

// Product constants.
const (
	ProductRECIEE      Product = "RECIEE"
	ProductRECIAG      Product = "RECIAG"
	ProductGD          Product = "GD"
	ProductML          Product = "ML"
	ProductEletroposto Product = "ELETROPOSTO"
)

// AllProducts lists products in display order.
var AllProducts = []Product{ProductRECIEE, ProductRECIAG, ProductGD, ProductML, ProductEletroposto}

// ContactType is how an agenda item reaches the contact.
type ContactType string

// ContactType constants.
const (
	ContactCall     ContactType = "ligação"
	ContactWhatsApp ContactType = "whatsapp"
	ContactVisit    ContactType = "visita"
	ContactMeeting  ContactType = "reunião"
	ContactEmail    ContactType = "email"
)

// AllContactTypes lists contact types in display order.
var AllContactTypes = []ContactType{ContactCall, ContactWhatsApp, ContactVisit, ContactMeeting, ContactEmail}

// Priority of an agenda item.
type Priority string

// Priority constants.
const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "média"
	PriorityLow    Priority = "baixa"
)

// AllPriorities lists priorities from highest to lowest.
var AllPriorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

// CampaignStatus constants.
const (
	StatusPlanned  CampaignStatus = "Planejada"
	StatusActive   CampaignStatus = "Ativa"
	StatusPaused   CampaignStatus = "Pausada"
	StatusFinished CampaignStatus = "Finalizada"
)

// AllCampaignStatuses lists statuses in lifecycle order.
var AllCampaignStatuses = []CampaignStatus{StatusPlanned, StatusActive, StatusPaused, StatusFinished}

// DefaultCommissionPercent applies when a follow-up has no commission set.
const DefaultCommissionPercent = 10

// ErrRequiredField is returned by constructors when a mandatory field is blank.
var ErrRequiredField = errors.New("required field is empty")

// RequiredFieldError names the blank field.
type RequiredFieldError struct {
	Field string
}

func (e *RequiredFieldError) Error() string {
	return e.Field + ": " + ErrRequiredField.Error()
}

func (e *RequiredFieldError) Unwrap() error {
	return ErrRequiredField
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &RequiredFieldError{Field: field}
	}
	return nil
}

type Client struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	SocialHandles string    `json:"socialHandles"`
	Birthday      string    `json:"birthday"`
	Company       string    `json:"company"`
	Role          string    `json:"role"`
	Approach      string    `json:"approach"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// NewClient validates and stamps a client.
func NewClient(c Client, now time.Time) (Client, error) {
	if err := required("name", c.Name); err != nil {
		return Client{}, err
	}
	c.ID = NewID(PrefixClient)
	c.CreatedAt = NewTimestamp(now)
	return c, nil
}

var clientAliases = map[string]string{
	"nome":        "name",
	"endereco":    "address",
	"telefone":    "phone",
	"redes":       "socialHandles",
	"aniversario": "birthday",
	"empresa":     "company",
	"cargo":       "role",
	"abordagem":   "approach",
}

func (c *Client) UnmarshalJSON(data []byte) error {
	data, err := renameLegacyKeys(data, clientAliases)
	if err != nil {
		return err
	}
	type plain Client
	return json.Unmarshal(data, (*plain)(c))
}

type AgendaItem struct {
	ID            string      `json:"id"`
	ContactName   string      `json:"contactName"`
	RelatedPerson string      `json:"relatedPerson"`
	RelationNote  string      `json:"relationNote"`
	Company       string      `json:"company"`
	Condominium   string      `json:"condominium"`
	Phone         string      `json:"phone"`
	Email         string      `json:"email"`
	Datetime      string      `json:"datetime"`
	ContactType   ContactType `json:"contactType"`
	Priority      Priority    `json:"priority"`
	Source        string      `json:"source"`
	Notes         string      `json:"notes"`
	Done          bool        `json:"done"`
	CreatedAt     Timestamp   `json:"createdAt"`
}

// NewAgendaItem validates an agenda item, applies defaults and stamps it.
func NewAgendaItem(a AgendaItem, now time.Time) (AgendaItem, error) {
	if err := required("contactName", a.ContactName); err != nil {
		return AgendaItem{}, err
	}
	if a.ContactType == "" {
		a.ContactType = ContactCall
	}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	a.ID = NewID(PrefixAgenda)
	a.CreatedAt = NewTimestamp(now)
	a.Done = false
	return a, nil
}

// When returns the scheduled time, if the item has one.
func (a AgendaItem) When() (time.Time, bool) {
	return ParseDateTime(a.Datetime)
}

func (a *AgendaItem) UnmarshalJSON(data []byte) error {
	data, err := renameLegacyKeys(data, map[string]string{"name": "contactName"})
	if err != nil {
		return err
	}
	type plain AgendaItem
	return json.Unmarshal(data, (*plain)(a))
}

type FollowupRecord struct {
	ID                    string    `json:"id"`
	ClientID              string    `json:"clientId"`
	ClientName            string    `json:"clientName"`
	AccountType           Product   `json:"accountType"`
	AccountValue          string    `json:"accountValue"`
	FirstContact          string    `json:"firstContact"`
	SentInvoice           Answer    `json:"sentInvoice"`
	ProposalReady         Answer    `json:"proposalReady"`
	ClientPresentation    Answer    `json:"clientPresentation"`
	WillClose             Outlook   `json:"willClose"`
	SentDocuments         Answer    `json:"sentDocuments"`
	SignedContract        Answer    `json:"signedContract"`
	ContractSignatureDate string    `json:"contractSignatureDate"`
	DoesntWantProduct     Answer    `json:"doesntWantProduct"`
	Feedback              string    `json:"feedback"`
	ReturnDays            string    `json:"returnDays"`
	Paid                  Answer    `json:"paid"`
	EstimatedValue        Number    `json:"estimatedValue"`
	CommissionPercent     *Number   `json:"commissionPercent,omitempty"`
	CreatedAt             Timestamp `json:"createdAt"`
}

// NewFollowupFor synthesizes the default follow-up record for a client.
func NewFollowupFor(c Client, now time.Time) FollowupRecord {
	pct := Number(DefaultCommissionPercent)
	return FollowupRecord{
		ID:                 NewID(PrefixFollowup),
		ClientID:           c.ID,
		ClientName:         c.Name,
		SentInvoice:        No,
		ProposalReady:      No,
		ClientPresentation: No,
		WillClose:          OutlookNo,
		SentDocuments:      No,
		SignedContract:     No,
		DoesntWantProduct:  No,
		Paid:               No,
		CommissionPercent:  &pct,
		CreatedAt:          NewTimestamp(now),
	}
}

// Commission returns the commission percent, defaulting to 10 when unset.
func (f FollowupRecord) Commission() float64 {
	if f.CommissionPercent == nil {
		return DefaultCommissionPercent
	}
	return f.CommissionPercent.Float()
}

// CommissionValue is the expected commission for this record.
func (f FollowupRecord) CommissionValue() float64 {
	return f.EstimatedValue.Float() * f.Commission() / 100
}

// Closed reports whether the contract was signed.
func (f FollowupRecord) Closed() bool {
	return f.SignedContract == Yes
}

type Strategy struct {
	ID          string     `json:"id"`
	WeekRange   string     `json:"weekRange"`
	Group       string     `json:"group"`
	Names       string     `json:"names"`
	Product     Product    `json:"product"`
	CampaignID  string     `json:"campaignId"`
	Campaign    string     `json:"campaign"`
	Channels    ChannelSet `json:"channels"`
	Indications string     `json:"indications"`
	Notes       string     `json:"notes"`
	CreatedAt   Timestamp  `json:"createdAt"`
}

// NewStrategy validates and stamps a strategy. The campaign name is resolved
// by the caller because it needs the campaign collection.
func NewStrategy(s Strategy, now time.Time) (Strategy, error) {
	if err := required("weekRange", s.WeekRange); err != nil {
		return Strategy{}, err
	}
	if s.Channels == nil {
		s.Channels = NewChannelSet()
	}
	s.ID = NewID(PrefixStrategy)
	s.CreatedAt = NewTimestamp(now)
	return s, nil
}

var strategyAliases = map[string]string{
	"grupo":      "group",
	"produto":    "product",
	"campanhaId": "campaignId",
	"campanha":   "campaign",
	"indicacoes": "indications",
	"types":      "channels",
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	data, err := renameLegacyKeys(data, strategyAliases)
	if err != nil {
		return err
	}
	type plain Strategy
	return json.Unmarshal(data, (*plain)(s))
}

type Campaign struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	StartDate      string         `json:"startDate"`
	EndDate        string         `json:"endDate"`
	Product        Product        `json:"product"`
	TargetAudience string         `json:"targetAudience"`
	ConversionGoal Number         `json:"conversionGoal"`
	Budget         Number         `json:"budget"`
	Channels       ChannelSet     `json:"channels"`
	Status         CampaignStatus `json:"status"`
	Notes          string         `json:"notes"`
	CreatedAt      Timestamp      `json:"createdAt"`
}

// NewCampaign validates, applies defaults and stamps a campaign.
func NewCampaign(c Campaign, now time.Time) (Campaign, error) {
	if err := required("name", c.Name); err != nil {
		return Campaign{}, err
	}
	if c.Status == "" {
		c.Status = StatusPlanned
	}
	if c.Channels == nil {
		c.Channels = NewChannelSet()
	}
	c.ID = NewID(PrefixCampaign)
	c.CreatedAt = NewTimestamp(now)
	return c, nil
}

var campaignAliases = map[string]string{
	"nome":          "name",
	"descricao":     "description",
	"dataInicio":    "startDate",
	"dataFim":       "endDate",
	"produto":       "product",
	"publicoAlvo":   "targetAudience",
	"metaConversao": "conversionGoal",
	"orcamento":     "budget",
	"canais":        "channels",
	"notas":         "notes",
}

func (c *Campaign) UnmarshalJSON(data []byte) error {
	data, err := renameLegacyKeys(data, campaignAliases)
	if err != nil {
		return err
	}
	type plain Campaign
	return json.Unmarshal(data, (*plain)(c))
}

type Analysis struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
}

// NewAnalysis stamps an analysis result.
func NewAnalysis(fileName, content string, now time.Time) Analysis {
	return Analysis{
		ID:        NewID(PrefixAnalysis),
		FileName:  fileName,
		Content:   content,
		CreatedAt: NewTimestamp(now),
	}
}

// User is a registered account. Users are stored in a map keyed by username.
type User struct {
	Username     string `json:"username,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
	// Password holds a plaintext credential written by the browser prototype.
	// It is only read, and cleared once the user logs in successfully.
	Password  string `json:"password,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	CepOrCity string `json:"cepOrCity,omitempty"`
	CPF       string `json:"cpf,omitempty"`
	Email     string `json:"email,omitempty"`
}

// UnmarshalJSON also accepts the earliest prototype format where a user entry
// was just the password string.
func (u *User) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		*u = User{Password: legacy}
		return nil
	}
	type plain User
	return json.Unmarshal(data, (*plain)(u))
}
