// ABOUTME: Tests for CRM data models
// ABOUTME: Validates constructors, lenient decoding and follow-up economics
package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsPrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID(PrefixClient)
		if !HasPrefix(id, PrefixClient) {
			t.Fatalf("expected client prefix, got %s", id)
		}
		if id != strings.ToLower(id) {
			t.Errorf("expected lowercase id, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestNewClientRequiresName(t *testing.T) {
	_, err := NewClient(Client{Email: "ana@example.com"}, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequiredField))

	var fieldErr *RequiredFieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "name", fieldErr.Field)

	c, err := NewClient(Client{Name: "Ana Silva"}, time.Now())
	require.NoError(t, err)
	assert.True(t, HasPrefix(c.ID, PrefixClient))
	assert.False(t, c.CreatedAt.IsZero())
}

func TestNewAgendaItemDefaults(t *testing.T) {
	a, err := NewAgendaItem(AgendaItem{ContactName: "Maria", Done: true}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, ContactCall, a.ContactType)
	assert.Equal(t, PriorityMedium, a.Priority)
	assert.False(t, a.Done)
	assert.True(t, HasPrefix(a.ID, PrefixAgenda))

	_, err = NewAgendaItem(AgendaItem{Company: "Acme"}, time.Now())
	assert.ErrorIs(t, err, ErrRequiredField)
}

func TestNewCampaignDefaults(t *testing.T) {
	c, err := NewCampaign(Campaign{Name: "Verão Solar"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, c.Status)
	assert.Len(t, c.Channels, len(AllChannels))
	assert.Empty(t, c.Channels.Active())
}

func TestNewStrategyRequiresWeek(t *testing.T) {
	_, err := NewStrategy(Strategy{Group: "Condomínios"}, time.Now())
	assert.ErrorIs(t, err, ErrRequiredField)
}

func TestNewFollowupForDefaults(t *testing.T) {
	c, err := NewClient(Client{Name: "Ana Silva"}, time.Now())
	require.NoError(t, err)

	f := NewFollowupFor(c, time.Now())
	assert.Equal(t, c.ID, f.ClientID)
	assert.Equal(t, "Ana Silva", f.ClientName)
	assert.Equal(t, No, f.SignedContract)
	assert.Equal(t, OutlookNo, f.WillClose)
	assert.Equal(t, No, f.Paid)
	assert.Equal(t, 10.0, f.Commission())
	assert.True(t, HasPrefix(f.ID, PrefixFollowup))
}

func TestCommissionDefaultsWhenUnset(t *testing.T) {
	f := FollowupRecord{EstimatedValue: 1000}
	assert.Equal(t, 10.0, f.Commission())
	assert.Equal(t, 100.0, f.CommissionValue())

	pct := Number(5)
	f.CommissionPercent = &pct
	assert.Equal(t, 50.0, f.CommissionValue())
}

func TestNumberLenientDecoding(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Number
	}{
		{"number", `1500.5`, 1500.5},
		{"numeric string", `"2500"`, 2500},
		{"comma decimal", `"12,5"`, 12.5},
		{"empty string", `""`, 0},
		{"junk", `"abc"`, 0},
		{"null", `null`, 0},
		{"bool", `true`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.json), &n))
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestFollowupDecodesBrowserRecord(t *testing.T) {
	raw := `{"id":"f_abc","clientId":"client_x","clientName":"Ana","estimatedValue":"","commissionPercent":"15","signedContract":"SIM","createdAt":"2025-01-10T12:00:00.000Z"}`

	var f FollowupRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, Number(0), f.EstimatedValue)
	assert.Equal(t, 15.0, f.Commission())
	assert.True(t, f.Closed())
	assert.Equal(t, 2025, f.CreatedAt.UTC().Year())
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-10T09:30:00.000Z"`, string(data))

	var empty Timestamp
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal([]byte(`""`), &back))
	assert.True(t, back.IsZero())
}

func TestClientAcceptsPrototypeFieldNames(t *testing.T) {
	raw := `{"id":"client_1","nome":"João","empresa":"Solaris","telefone":"1199","cargo":"Síndico"}`

	var c Client
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, "João", c.Name)
	assert.Equal(t, "Solaris", c.Company)
	assert.Equal(t, "1199", c.Phone)
	assert.Equal(t, "Síndico", c.Role)
}

func TestCampaignAcceptsPrototypeFieldNames(t *testing.T) {
	raw := `{"id":"camp_1","nome":"Inverno","orcamento":"5000","canais":{"email":true,"visita":false},"status":"Ativa"}`

	var c Campaign
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, "Inverno", c.Name)
	assert.Equal(t, Number(5000), c.Budget)
	assert.Equal(t, []Channel{ChannelEmail}, c.Channels.Active())
	assert.Equal(t, StatusActive, c.Status)
}

func TestUserAcceptsLegacyPasswordString(t *testing.T) {
	var users map[string]User
	require.NoError(t, json.Unmarshal([]byte(`{"ana":"secret","bia":{"passwordHash":"h","fullName":"Bia"}}`), &users))
	assert.Equal(t, "secret", users["ana"].Password)
	assert.Equal(t, "h", users["bia"].PasswordHash)
	assert.Equal(t, "Bia", users["bia"].FullName)
}

func TestAgendaWhen(t *testing.T) {
	a := AgendaItem{Datetime: "2025-01-10T14:00"}
	when, ok := a.When()
	require.True(t, ok)
	assert.Equal(t, 14, when.Hour())

	_, ok = AgendaItem{}.When()
	assert.False(t, ok)
}

func TestParseChannels(t *testing.T) {
	set := ParseChannels("whatsapp, Email ,")
	assert.Equal(t, []Channel{ChannelEmail, ChannelWhatsApp}, set.Active())
}
