// ABOUTME: Summaries of the CRM collections held in a KV store
// ABOUTME: Used by sync status, unlink and wipe to name what is stored
package charm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sustentalski/salescrm/crm"
	"github.com/sustentalski/salescrm/store"
)

var collectionLabels = map[string]string{
	crm.KeyStrategies:   "weekly strategies",
	crm.KeyAgenda:       "agenda items",
	crm.KeyFollowups:    "follow-up records",
	crm.KeyAnalyses:     "saved analyses",
	crm.KeyClients:      "clients",
	crm.KeyUsers:        "registered users",
	crm.KeyLoggedInUser: "active session",
	crm.KeyCampaigns:    "campaigns",
}

// Collection is one stored CRM key.
type Collection struct {
	Key     string
	Label   string
	Records int
	Bytes   int
}

// CRMCollections returns the CRM keys present in kv, in crm.AllKeys order.
// Keys that belong to nothing in the CRM are left out.
func CRMCollections(kv store.KV) ([]Collection, error) {
	var out []Collection
	for _, key := range crm.AllKeys {
		raw, err := kv.Get(key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		out = append(out, Collection{
			Key:     key,
			Label:   collectionLabels[key],
			Records: countRecords(raw),
			Bytes:   len(raw),
		})
	}
	return out, nil
}

// countRecords counts array elements or object entries. A non-empty scalar
// counts as one record; anything undecodable counts as zero.
func countRecords(raw []byte) int {
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		return len(list)
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		return len(obj)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil && s != "" {
		return 1
	}
	return 0
}

func printCollections(w io.Writer, cols []Collection) {
	if len(cols) == 0 {
		_, _ = fmt.Fprintln(w, "  (no CRM collections stored)")
		return
	}
	for _, c := range cols {
		_, _ = fmt.Fprintf(w, "  %-22s %5d  %s\n", c.Key, c.Records, c.Label)
	}
}

// changedCollections returns the entries of after whose record count or
// size differs from before, plus any that are new.
func changedCollections(before, after []Collection) []Collection {
	prev := make(map[string]Collection, len(before))
	for _, c := range before {
		prev[c.Key] = c
	}
	var out []Collection
	for _, c := range after {
		if p, ok := prev[c.Key]; !ok || p.Records != c.Records || p.Bytes != c.Bytes {
			out = append(out, c)
		}
	}
	return out
}

// wipe lists the CRM collections in c, then resets the whole store.
func wipe(w io.Writer, c *Client) error {
	cols, err := CRMCollections(c)
	if err != nil {
		return err
	}
	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}

	_, _ = fmt.Fprintf(w, "✓ Removed %d CRM collections:\n", len(cols))
	printCollections(w, cols)
	return nil
}
