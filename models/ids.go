// ABOUTME: Identifier generation for CRM entities
// ABOUTME: Prefixed lowercase ULIDs that sort by creation time
package models

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID prefixes per entity type.
const (
	PrefixClient   = "client"
	PrefixAgenda   = "a"
	PrefixFollowup = "f"
	PrefixStrategy = "s"
	PrefixCampaign = "camp"
	PrefixAnalysis = "an"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a process-unique identifier such as "client_01hv3k...".
func NewID(prefix string) string {
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyMu.Unlock()
	return prefix + "_" + strings.ToLower(id.String())
}

// HasPrefix reports whether id was generated for the given prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
