// ABOUTME: Lenient value types shared by the CRM entities
// ABOUTME: Numbers, timestamps and channel sets that tolerate browser-era JSON
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Number is a float that decodes from JSON numbers, numeric strings or "".
// Anything that does not parse decodes to 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil //nolint:nilerr // malformed strings count as zero
		}
		*n = ParseNumber(s)
		return nil
	}

	if f, err := strconv.ParseFloat(string(data), 64); err == nil {
		*n = Number(f)
	}
	return nil
}

// Float returns the number as a float64.
func (n Number) Float() float64 {
	return float64(n)
}

// ParseNumber converts form input into a Number, treating blanks and junk as 0.
// A single comma is accepted as the decimal separator.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Number(f)
}

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a creation time stored as an ISO-8601 string.
// Empty or unparseable strings decode to the zero time.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.UTC().Format(isoLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = time.Time{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil //nolint:nilerr // non-string timestamps are treated as unset
	}
	if parsed, ok := ParseDateTime(s); ok {
		t.Time = parsed
	}
	return nil
}

// dateTimeLayouts are the formats produced by date, datetime-local and ISO inputs.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses the date formats the CRM stores. Values without a zone
// are interpreted in local time.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Channel is an outreach channel.
type Channel string

// Channel constants.
const (
	ChannelEmail     Channel = "email"
	ChannelMeeting   Channel = "reuniao"
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelPhoneCall Channel = "telefonema"
	ChannelVisit     Channel = "visita"
)

// AllChannels lists channels in display order.
var AllChannels = []Channel{ChannelEmail, ChannelMeeting, ChannelWhatsApp, ChannelPhoneCall, ChannelVisit}

// ChannelLabel returns the human label for a channel.
func ChannelLabel(c Channel) string {
	switch c {
	case ChannelEmail:
		return "E-mail"
	case ChannelMeeting:
		return "Reunião"
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelPhoneCall:
		return "Telefonema"
	case ChannelVisit:
		return "Visita"
	default:
		return string(c)
	}
}

// ChannelSet records which channels are selected.
type ChannelSet map[Channel]bool

// NewChannelSet returns a set with every known channel present and unselected.
func NewChannelSet(selected ...Channel) ChannelSet {
	set := make(ChannelSet, len(AllChannels))
	for _, c := range AllChannels {
		set[c] = false
	}
	for _, c := range selected {
		set[c] = true
	}
	return set
}

// Active returns the selected channels in display order, followed by any
// unknown channels that happen to be selected.
func (s ChannelSet) Active() []Channel {
	var active []Channel
	seen := make(map[Channel]bool, len(AllChannels))
	for _, c := range AllChannels {
		seen[c] = true
		if s[c] {
			active = append(active, c)
		}
	}
	var extra []string
	for c, on := range s {
		if on && !seen[c] {
			extra = append(extra, string(c))
		}
	}
	slices.Sort(extra)
	for _, c := range extra {
		active = append(active, Channel(c))
	}
	return active
}

// ParseChannels converts a comma separated list into a set. Unknown names are kept.
func ParseChannels(list string) ChannelSet {
	set := NewChannelSet()
	for _, part := range strings.Split(list, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		set[Channel(part)] = true
	}
	return set
}

// renameLegacyKeys rewrites object keys written by the first browser prototype
// to their current names. Keys already present under the new name win.
func renameLegacyKeys(data []byte, aliases map[string]string) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	changed := false
	for legacy, current := range aliases {
		v, ok := raw[legacy]
		if !ok {
			continue
		}
		if _, exists := raw[current]; !exists {
			raw[current] = v
		}
		delete(raw, legacy)
		changed = true
	}
	if !changed {
		return data, nil
	}
	return json.Marshal(raw)
}
