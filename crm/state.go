// ABOUTME: Application state for the sales pipeline CRM
// ABOUTME: One reactive binding per persisted collection plus the login session
package crm

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sustentalski/salescrm/models"
	"github.com/sustentalski/salescrm/store"
)

// Storage keys. They match the keys the browser build used so exported
// localStorage dumps can be copied over unchanged.
const (
	KeyStrategies   = "sust_v2_strategies"
	KeyAgenda       = "sust_v2_agenda"
	KeyFollowups    = "sust_v2_followups"
	KeyAnalyses     = "sust_v2_analyses"
	KeyClients      = "sust_v2_clients"
	KeyUsers        = "sust_v2_users"
	KeyLoggedInUser = "sust_v2_loggedInUser"
	KeyCampaigns    = "sust_v2_campaigns"
)

// AllKeys lists every key the state persists.
var AllKeys = []string{
	KeyStrategies, KeyAgenda, KeyFollowups, KeyAnalyses,
	KeyClients, KeyUsers, KeyLoggedInUser, KeyCampaigns,
}

// ErrNotFound is returned when an id does not match any record.
var ErrNotFound = errors.New("record not found")

// State owns every CRM collection. All mutations go through State so that
// each change rewrites its whole collection and follow-ups stay reconciled.
type State struct {
	logger *log.Logger
	now    func() time.Time

	clients    *store.Binding[[]models.Client]
	agenda     *store.Binding[[]models.AgendaItem]
	followups  *store.Binding[[]models.FollowupRecord]
	strategies *store.Binding[[]models.Strategy]
	campaigns  *store.Binding[[]models.Campaign]
	analyses   *store.Binding[[]models.Analysis]
	users      *store.Binding[map[string]models.User]
	session    *store.Binding[string]

	// mu serializes read-then-write sequences that span collections.
	mu sync.Mutex
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *State) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// Open binds every collection to kv and reconciles follow-ups once.
func Open(kv store.KV, opts ...Option) *State {
	s := &State{
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.clients = store.Bind(kv, KeyClients, emptySlice[models.Client], s.logger)
	s.agenda = store.Bind(kv, KeyAgenda, emptySlice[models.AgendaItem], s.logger)
	s.followups = store.Bind(kv, KeyFollowups, emptySlice[models.FollowupRecord], s.logger)
	s.strategies = store.Bind(kv, KeyStrategies, emptySlice[models.Strategy], s.logger)
	s.campaigns = store.Bind(kv, KeyCampaigns, emptySlice[models.Campaign], s.logger)
	s.analyses = store.Bind(kv, KeyAnalyses, emptySlice[models.Analysis], s.logger)
	s.users = store.Bind(kv, KeyUsers, func() map[string]models.User { return map[string]models.User{} }, s.logger)
	s.session = store.Bind(kv, KeyLoggedInUser, func() string { return "" }, s.logger)

	s.ReconcileFollowups()
	return s
}

// Reload drops cached collections so the next read goes to the store,
// for example after a charm sync pulled remote changes.
func (s *State) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients.Reload()
	s.agenda.Reload()
	s.followups.Reload()
	s.strategies.Reload()
	s.campaigns.Reload()
	s.analyses.Reload()
	s.users.Reload()
	s.session.Reload()
}

// stamp returns the current time truncated to what the stored format keeps.
func (s *State) stamp() time.Time {
	return s.now().Truncate(time.Millisecond)
}

func emptySlice[T any]() []T {
	return []T{}
}

// prepend returns a new slice with v first. The input is not modified.
func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

// without returns a copy of list minus the first element matching id.
func without[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	for i, v := range list {
		if idOf(v) == id {
			out := make([]T, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), true
		}
	}
	return list, false
}

// replaced returns a copy of list with the element matching id swapped for v.
func replaced[T any](list []T, id string, idOf func(T) string, fn func(T) T) ([]T, bool) {
	for i, item := range list {
		if idOf(item) == id {
			out := make([]T, len(list))
			copy(out, list)
			out[i] = fn(item)
			return out, true
		}
	}
	return list, false
}

func find[T any](list []T, id string, idOf func(T) string) (T, bool) {
	for _, v := range list {
		if idOf(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}
