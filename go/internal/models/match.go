package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus represents the state of a single fixture
type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
)

// Match represents one scheduled or played fixture. Rows are created
// exclusively by fixture generation; afterward only score and status fields
// change, never the pairing or round.
type Match struct {
	ID          uuid.UUID   `json:"id"`
	SeasonID    uuid.UUID   `json:"season_id"`
	HomeTeamID  uuid.UUID   `json:"home_team_id"`
	AwayTeamID  uuid.UUID   `json:"away_team_id"`
	RoundNumber int         `json:"round_number"`
	MatchDate   time.Time   `json:"match_date"`
	Status      MatchStatus `json:"status"`
	HomeScore   *int        `json:"home_score,omitempty"`
	AwayScore   *int        `json:"away_score,omitempty"`
	Venue       string      `json:"venue,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Involves reports whether the given team plays in this match.
func (m *Match) Involves(teamID uuid.UUID) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}
