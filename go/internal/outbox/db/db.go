// Package db holds the hand-maintained query layer for the season_outbox
// table, shaped like generated sqlc output.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// OutboxEvent mirrors one row of the season_outbox table.
type OutboxEvent struct {
	ID        uuid.UUID
	SeasonID  uuid.UUID
	EventType string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    sql.NullTime
}

type InsertEventParams struct {
	ID        uuid.UUID
	SeasonID  uuid.UUID
	EventType string
	Payload   json.RawMessage
}

const insertEvent = `INSERT INTO season_outbox (
	id, season_id, event_type, payload, created_at
) VALUES ($1, $2, $3, $4, now())`

func (q *Queries) InsertEvent(ctx context.Context, arg InsertEventParams) error {
	_, err := q.db.ExecContext(ctx, insertEvent,
		arg.ID, arg.SeasonID, arg.EventType, []byte(arg.Payload))
	return err
}

const fetchUnsentEvents = `SELECT id, season_id, event_type, payload, created_at, sent_at
FROM season_outbox
WHERE sent_at IS NULL
ORDER BY created_at ASC
LIMIT $1
FOR UPDATE SKIP LOCKED`

// FetchUnsentEvents locks a batch of undispatched events. SKIP LOCKED keeps
// concurrent dispatchers from double-publishing within the same poll cycle.
func (q *Queries) FetchUnsentEvents(ctx context.Context, limit int32) ([]OutboxEvent, error) {
	rows, err := q.db.QueryContext(ctx, fetchUnsentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.EventType, &e.Payload, &e.CreatedAt, &e.SentAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const markEventsSent = `UPDATE season_outbox
SET sent_at = now()
WHERE id = ANY($1)`

func (q *Queries) MarkEventsSent(ctx context.Context, ids []uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, markEventsSent, pq.Array(ids))
	return err
}

const notifyEvent = `SELECT pg_notify($1, $2)`

func (q *Queries) NotifyEvent(ctx context.Context, channel string, payload string) error {
	_, err := q.db.ExecContext(ctx, notifyEvent, channel, payload)
	return err
}

const countUnsentEvents = `SELECT count(*) FROM season_outbox WHERE sent_at IS NULL`

func (q *Queries) CountUnsentEvents(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnsentEvents).Scan(&count)
	return count, err
}
