// ABOUTME: Bookkeeping for imports from external services
// ABOUTME: Tracks per-service sync status and which remote items became which CRM records
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sustentalski/salescrm/models"
)

// Sync status values.
const (
	SyncIdle    = "idle"
	SyncRunning = "syncing"
	SyncFailed  = "error"
)

// SyncState is the last known sync outcome for one service.
type SyncState struct {
	Service      string
	LastSyncTime *time.Time
	Status       string
	ErrorMessage string
	ItemsSynced  int
	UpdatedAt    time.Time
}

// GetSyncState returns the state for service, or nil if it never ran.
func GetSyncState(db *sql.DB, service string) (*SyncState, error) {
	row := db.QueryRow(`
		SELECT service, last_sync_time, status, error_message, items_synced, updated_at
		FROM sync_state
		WHERE service = ?
	`, service)

	state, err := scanSyncState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

// ListSyncStates returns every service's state ordered by name.
func ListSyncStates(db *sql.DB) ([]SyncState, error) {
	rows, err := db.Query(`
		SELECT service, last_sync_time, status, error_message, items_synced, updated_at
		FROM sync_state
		ORDER BY service
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync states: %w", err)
	}
	return states, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSyncState(s scanner) (*SyncState, error) {
	var state SyncState
	var last sql.NullTime
	var msg sql.NullString
	if err := s.Scan(&state.Service, &last, &state.Status, &msg, &state.ItemsSynced, &state.UpdatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		state.LastSyncTime = &last.Time
	}
	state.ErrorMessage = msg.String
	return &state, nil
}

// MarkSyncRunning flags service as in progress.
func MarkSyncRunning(db *sql.DB, service string) error {
	return upsertSyncState(db, service, SyncRunning, "", -1)
}

// MarkSyncFailed records the error that stopped a sync.
func MarkSyncFailed(db *sql.DB, service string, cause error) error {
	return upsertSyncState(db, service, SyncFailed, cause.Error(), -1)
}

// MarkSyncDone records a successful sync and how many items it imported.
func MarkSyncDone(db *sql.DB, service string, items int) error {
	return upsertSyncState(db, service, SyncIdle, "", items)
}

func upsertSyncState(db *sql.DB, service, status, message string, items int) error {
	var msg sql.NullString
	if message != "" {
		msg = sql.NullString{String: message, Valid: true}
	}

	var err error
	if items >= 0 {
		_, err = db.Exec(`
			INSERT INTO sync_state (service, last_sync_time, status, error_message, items_synced, updated_at)
			VALUES (?, CURRENT_TIMESTAMP, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(service) DO UPDATE SET
				last_sync_time = CURRENT_TIMESTAMP,
				status = excluded.status,
				error_message = excluded.error_message,
				items_synced = excluded.items_synced,
				updated_at = CURRENT_TIMESTAMP
		`, service, status, msg, items)
	} else {
		_, err = db.Exec(`
			INSERT INTO sync_state (service, status, error_message, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(service) DO UPDATE SET
				status = excluded.status,
				error_message = excluded.error_message,
				updated_at = CURRENT_TIMESTAMP
		`, service, status, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}

// FindSynced returns the CRM entity created from a remote item, if any.
func FindSynced(db *sql.DB, service, sourceID string) (string, bool, error) {
	var entityID string
	err := db.QueryRow(`
		SELECT entity_id FROM sync_log
		WHERE service = ? AND source_id = ?
	`, service, sourceID).Scan(&entityID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to check sync log: %w", err)
	}
	return entityID, true, nil
}

// RecordSynced links a remote item to the CRM entity it produced.
// Recording the same remote item twice updates the link.
func RecordSynced(db *sql.DB, service, sourceID, entityType, entityID, metadata string) error {
	_, err := db.Exec(`
		INSERT INTO sync_log (id, service, source_id, entity_type, entity_id, synced_at, metadata)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, ?)
		ON CONFLICT(service, source_id) DO UPDATE SET
			entity_type = excluded.entity_type,
			entity_id = excluded.entity_id,
			synced_at = CURRENT_TIMESTAMP,
			metadata = excluded.metadata
	`, models.NewID("sync"), service, sourceID, entityType, entityID, metadata)
	if err != nil {
		return fmt.Errorf("failed to record sync: %w", err)
	}
	return nil
}
