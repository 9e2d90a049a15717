package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentFormat represents the competition format of a season
type TournamentFormat string

const (
	TournamentFormatLeague   TournamentFormat = "league"
	TournamentFormatKnockout TournamentFormat = "knockout"
	TournamentFormatHybrid   TournamentFormat = "hybrid"
)

// SeasonStatus represents the lifecycle status of a season
type SeasonStatus string

const (
	SeasonStatusDraft        SeasonStatus = "draft"
	SeasonStatusRegistration SeasonStatus = "registration"
	SeasonStatusActive       SeasonStatus = "active"
	SeasonStatusCompleted    SeasonStatus = "completed"
	SeasonStatusCancelled    SeasonStatus = "cancelled"
)

// FixturesStatus represents the state of the fixture generation pipeline,
// independent of the season's overall lifecycle status.
type FixturesStatus string

const (
	FixturesStatusPending    FixturesStatus = "pending"
	FixturesStatusGenerating FixturesStatus = "generating"
	FixturesStatusCompleted  FixturesStatus = "completed"
	FixturesStatusError      FixturesStatus = "error"
)

// SeasonConfig holds the closed, validated configuration of a season.
// Invalid configurations are rejected at creation time rather than being
// carried around as open maps.
type SeasonConfig struct {
	LeagueID                uuid.UUID        `json:"league_id"`
	Name                    string           `json:"name"`
	SeasonYear              int              `json:"season_year"`
	TournamentFormat        TournamentFormat `json:"tournament_format"`
	StartDate               time.Time        `json:"start_date"`
	EndDate                 time.Time        `json:"end_date"`
	RegistrationDeadline    *time.Time       `json:"registration_deadline,omitempty"`
	MatchFrequencyDays      int              `json:"match_frequency_days"`
	PreferredMatchTime      string           `json:"preferred_match_time"` // HH:MM:SS
	MinTeams                int              `json:"min_teams"`
	MaxTeams                int              `json:"max_teams"`
	RoundsPerPairing        int              `json:"rounds_per_pairing"` // 1 = single, 2 = home-and-away
	PointsForWin            int              `json:"points_for_win"`
	PointsForDraw           int              `json:"points_for_draw"`
	PointsForLoss           int              `json:"points_for_loss"`
	AllowDraws              bool             `json:"allow_draws"`
	HomeAwayBalanceRequired bool             `json:"home_away_balance_required"`
	DefaultVenue            string           `json:"default_venue,omitempty"`
}

// Season represents one competition cycle of a league.
type Season struct {
	ID                   uuid.UUID      `json:"id"`
	Config               SeasonConfig   `json:"config"`
	Status               SeasonStatus   `json:"status"`
	FixturesStatus       FixturesStatus `json:"fixtures_status"`
	FixturesError        string         `json:"fixtures_error,omitempty"`
	FixturesGeneratedAt  *time.Time     `json:"fixtures_generated_at,omitempty"`
	RegisteredTeamsCount int            `json:"registered_teams_count"`
	TotalMatchesPlanned  int            `json:"total_matches_planned"`
	Version              int64          `json:"version"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// IsTerminal reports whether the season can no longer change state.
func (s *Season) IsTerminal() bool {
	return s.Status == SeasonStatusCompleted || s.Status == SeasonStatusCancelled
}
