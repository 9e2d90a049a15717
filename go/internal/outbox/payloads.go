package outbox

import (
	"time"
)

// Event payloads shared with downstream consumers. Season and team IDs are
// strings so consumers in any language can decode them without a UUID type.

// SeasonCreatedPayload is the payload for a season.created event
type SeasonCreatedPayload struct {
	SeasonID   string `json:"season_id"`
	LeagueID   string `json:"league_id"`
	Name       string `json:"name"`
	SeasonYear int    `json:"season_year"`
	Format     string `json:"format"`
}

// RegistrationOpenedPayload is the payload for a season.registration.opened event
type RegistrationOpenedPayload struct {
	SeasonID string     `json:"season_id"`
	Deadline *time.Time `json:"deadline,omitempty"`
	MinTeams int        `json:"min_teams"`
	MaxTeams int        `json:"max_teams"`
}

// SeasonActivatedPayload is the payload for a season.activated event
type SeasonActivatedPayload struct {
	SeasonID    string    `json:"season_id"`
	ActivatedAt time.Time `json:"activated_at"`
	TeamCount   int       `json:"team_count"`
	MatchCount  int       `json:"match_count"`
}

// SeasonCancelledPayload is the payload for a season.cancelled event
type SeasonCancelledPayload struct {
	SeasonID         string    `json:"season_id"`
	CancelledAt      time.Time `json:"cancelled_at"`
	Reason           string    `json:"reason"`
	MatchesCancelled int       `json:"matches_cancelled"`
}

// FixturesGeneratedPayload is the payload for season.fixtures.generated and
// season.fixtures.regenerated events
type FixturesGeneratedPayload struct {
	SeasonID    string    `json:"season_id"`
	GeneratedAt time.Time `json:"generated_at"`
	TeamCount   int       `json:"team_count"`
	MatchCount  int       `json:"match_count"`
	Rounds      int       `json:"rounds"`
}

// GenerationFailedPayload is the payload for a season.generation.failed event
type GenerationFailedPayload struct {
	SeasonID string    `json:"season_id"`
	FailedAt time.Time `json:"failed_at"`
	Code     string    `json:"code"`
	Reason   string    `json:"reason"`
}

// GenerationStalledPayload is the payload for a season.generation.stalled
// event, emitted by the watchdog when a generating season exceeds the stale
// interval. Operators decide whether to reset; nothing is reset automatically.
type GenerationStalledPayload struct {
	SeasonID        string    `json:"season_id"`
	GeneratingSince time.Time `json:"generating_since"`
	DetectedAt      time.Time `json:"detected_at"`
}

// TeamRegisteredPayload is the payload for a season.team.registered event
type TeamRegisteredPayload struct {
	SeasonID        string    `json:"season_id"`
	TeamID          string    `json:"team_id"`
	RegisteredAt    time.Time `json:"registered_at"`
	RegisteredCount int       `json:"registered_count"`
}

// TeamWithdrawnPayload is the payload for a season.team.withdrawn event
type TeamWithdrawnPayload struct {
	SeasonID        string    `json:"season_id"`
	TeamID          string    `json:"team_id"`
	WithdrawnAt     time.Time `json:"withdrawn_at"`
	RegisteredCount int       `json:"registered_count"`
}

// MatchesCancelledPayload is the payload for a season.matches.cancelled event
type MatchesCancelledPayload struct {
	SeasonID    string    `json:"season_id"`
	TeamID      string    `json:"team_id,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
	Count       int       `json:"count"`
}
