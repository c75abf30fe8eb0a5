package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nerrad567/bluewatch/internal/tracker"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// SQLiteRepository implements Repository using SQLite.
//
// Events live in the presence_events table created by the embedded
// migrations. Timestamps are stored as RFC3339 UTC strings.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite journal repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordEvent inserts one presence event.
func (r *SQLiteRepository) RecordEvent(ctx context.Context, ev tracker.Event, addressType string, occurredAt time.Time) error {
	if ev.MAC == "" {
		return fmt.Errorf("event mac is required")
	}
	if addressType == "" {
		addressType = tracker.AddressTypeUnknown
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO presence_events (type, mac, name, address_type, rssi_dbm, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(ev.Type),
		ev.MAC,
		ev.Name,
		addressType,
		ev.RSSI,
		occurredAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting presence event: %w", err)
	}

	return nil
}

// RecentEvents returns recent events ordered newest first.
//
// A mac of "" returns events for all addresses. The limit defaults to 50
// and is clamped to 500.
func (r *SQLiteRepository) RecentEvents(ctx context.Context, mac string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := `SELECT id, type, mac, name, address_type, rssi_dbm, occurred_at
	          FROM presence_events`
	args := []any{}
	if mac != "" {
		query += " WHERE mac = ?"
		args = append(args, mac)
	}
	query += " ORDER BY occurred_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying presence events: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var evType string
		var occurredAt string

		if err := rows.Scan(&entry.ID, &evType, &entry.MAC, &entry.Name, &entry.AddressType, &entry.RSSI, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning presence event: %w", err)
		}
		entry.Type = tracker.EventType(evType)

		ts, err := time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp %q: %w", occurredAt, err)
		}
		entry.OccurredAt = ts

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presence events: %w", err)
	}

	return entries, nil
}

// PruneEvents deletes events older than the given duration.
func (r *SQLiteRepository) PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM presence_events WHERE occurred_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting presence events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
