package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Season mirrors one row of the seasons table.
type Season struct {
	ID                      uuid.UUID
	LeagueID                uuid.UUID
	Name                    string
	SeasonYear              int32
	TournamentFormat        string
	StartDate               time.Time
	EndDate                 time.Time
	RegistrationDeadline    sql.NullTime
	MatchFrequencyDays      int32
	PreferredMatchTime      string
	MinTeams                int32
	MaxTeams                int32
	RoundsPerPairing        int32
	PointsForWin            int32
	PointsForDraw           int32
	PointsForLoss           int32
	AllowDraws              bool
	HomeAwayBalanceRequired bool
	DefaultVenue            sql.NullString
	Status                  string
	FixturesStatus          string
	FixturesError           sql.NullString
	FixturesGeneratedAt     sql.NullTime
	RegisteredTeamsCount    int32
	TotalMatchesPlanned     int32
	Version                 int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Match mirrors one row of the matches table.
type Match struct {
	ID          uuid.UUID
	SeasonID    uuid.UUID
	HomeTeamID  uuid.UUID
	AwayTeamID  uuid.UUID
	RoundNumber int32
	MatchDate   time.Time
	Status      string
	HomeScore   sql.NullInt32
	AwayScore   sql.NullInt32
	Venue       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
