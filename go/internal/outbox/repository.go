package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Gansovic/matchday/go/internal/outbox/db"
)

// NotifyChannel is the Postgres NOTIFY channel pinged on every outbox insert
// so the listener can drain without waiting for the poll cadence.
const NotifyChannel = "season_outbox_events"

// NewEvent builds an outbox event with a fresh ID and a marshalled payload.
func NewEvent(seasonID uuid.UUID, eventType string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:        uuid.New(),
		SeasonID:  seasonID,
		EventType: eventType,
		Payload:   body,
	}, nil
}

// InsertTx writes events into the outbox within the caller's transaction and
// notifies the dispatch channel. The notification only becomes visible if the
// surrounding transaction commits.
func InsertTx(ctx context.Context, tx *sql.Tx, events ...Event) error {
	queries := db.New(tx)
	for _, event := range events {
		err := queries.InsertEvent(ctx, db.InsertEventParams{
			ID:        event.ID,
			SeasonID:  event.SeasonID,
			EventType: event.EventType,
			Payload:   event.Payload,
		})
		if err != nil {
			return fmt.Errorf("insert %s outbox event: %w", event.EventType, err)
		}
		if err := queries.NotifyEvent(ctx, NotifyChannel, event.ID.String()); err != nil {
			return fmt.Errorf("notify %s outbox event: %w", event.EventType, err)
		}
	}
	return nil
}
