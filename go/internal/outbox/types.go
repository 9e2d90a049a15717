// Package outbox implements the transactional outbox for season lifecycle
// events. Rows are written in the same transaction as the state change they
// report, then dispatched to NATS JetStream by a poll worker or LISTEN/NOTIFY
// listener, so downstream consumers (standings, notifications) never observe
// an event for a change that did not commit.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the season engine.
const (
	EventSeasonCreated       = "season.created"
	EventRegistrationOpened  = "season.registration.opened"
	EventSeasonActivated     = "season.activated"
	EventSeasonCancelled     = "season.cancelled"
	EventFixturesGenerated   = "season.fixtures.generated"
	EventFixturesRegenerated = "season.fixtures.regenerated"
	EventGenerationFailed    = "season.generation.failed"
	EventGenerationStalled   = "season.generation.stalled"
	EventTeamRegistered      = "season.team.registered"
	EventTeamWithdrawn       = "season.team.withdrawn"
	EventMatchesCancelled    = "season.matches.cancelled"
)

// Event represents an outbox event for the application layer.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	SeasonID  uuid.UUID       `json:"season_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}
