package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/flowwatch/internal/session"
	"github.com/blackwell-systems/flowwatch/internal/window"
)

// timeFormat is how timestamps are stored in SQLite.
const timeFormat = time.RFC3339

// SessionRow is one persisted session record.
type SessionRow struct {
	ID              int64           `json:"id"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         *time.Time      `json:"ended_at,omitempty"`
	DurationSeconds float64         `json:"duration_seconds"`
	Score           float64         `json:"score"`
	Metrics         window.Snapshot `json:"metrics"`
}

// CreateSession inserts a new session record and returns its identifier.
func (db *DB) CreateSession(ctx context.Context, startedAt time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO sessions (started_at) VALUES (?)",
		startedAt.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("creating session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading session id: %w", err)
	}
	return id, nil
}

// UpdateSession overwrites the session's rolling fields with the latest tick
// data and appends a session_metrics history row. Best-effort eventual
// consistency: successive updates may land out of order, last write wins.
func (db *DB) UpdateSession(ctx context.Context, id int64, update session.Update) error {
	_, err := db.conn.ExecContext(ctx, `
		UPDATE sessions SET
			duration_seconds = ?,
			score = ?,
			typing_rate = ?,
			backspace_rate = ?,
			pointer_distance = ?,
			tab_switches = ?,
			idle_seconds = ?
		WHERE id = ?`,
		update.DurationSeconds,
		update.Score,
		update.Snapshot.TypingRate,
		update.Snapshot.BackspaceRate,
		update.Snapshot.PointerDistance,
		update.Snapshot.TabSwitches,
		update.Snapshot.IdleSeconds,
		id)
	if err != nil {
		return fmt.Errorf("updating session %d: %w", id, err)
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO session_metrics
			(session_id, taken_at, score, typing_rate, backspace_rate,
			 pointer_distance, tab_switches, idle_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		update.Snapshot.TakenAt.UTC().Format(timeFormat),
		update.Score,
		update.Snapshot.TypingRate,
		update.Snapshot.BackspaceRate,
		update.Snapshot.PointerDistance,
		update.Snapshot.TabSwitches,
		update.Snapshot.IdleSeconds)
	if err != nil {
		return fmt.Errorf("appending session metrics for %d: %w", id, err)
	}

	return nil
}

// EndSession stamps the session's end time.
func (db *DB) EndSession(ctx context.Context, id int64, endedAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ? WHERE id = ?",
		endedAt.UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("ending session %d: %w", id, err)
	}
	return nil
}

// RecordIntervention persists one triggered intervention for a session.
func (db *DB) RecordIntervention(ctx context.Context, id int64, kind, reason string, triggeredAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO interventions (session_id, kind, reason, triggered_at) VALUES (?, ?, ?, ?)",
		id, kind, reason, triggeredAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("recording intervention for %d: %w", id, err)
	}
	return nil
}

// ListSessions returns the most recent sessions, newest first.
func (db *DB) ListSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, started_at, ended_at, duration_seconds, score,
		       typing_rate, backspace_rate, pointer_distance, tab_switches, idle_seconds
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var (
			r       SessionRow
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &ended, &r.DurationSeconds, &r.Score,
			&r.Metrics.TypingRate, &r.Metrics.BackspaceRate, &r.Metrics.PointerDistance,
			&r.Metrics.TabSwitches, &r.Metrics.IdleSeconds); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		if t, perr := time.Parse(timeFormat, started); perr == nil {
			r.StartedAt = t
		}
		if ended.Valid {
			if t, perr := time.Parse(timeFormat, ended.String); perr == nil {
				r.EndedAt = &t
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
