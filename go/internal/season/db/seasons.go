package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const seasonColumns = `id, league_id, name, season_year, tournament_format,
	start_date, end_date, registration_deadline, match_frequency_days,
	preferred_match_time, min_teams, max_teams, rounds_per_pairing,
	points_for_win, points_for_draw, points_for_loss, allow_draws,
	home_away_balance_required, default_venue, status, fixtures_status,
	fixtures_error, fixtures_generated_at, registered_teams_count,
	total_matches_planned, version, created_at, updated_at`

func scanSeason(row interface{ Scan(dest ...any) error }) (Season, error) {
	var s Season
	err := row.Scan(
		&s.ID, &s.LeagueID, &s.Name, &s.SeasonYear, &s.TournamentFormat,
		&s.StartDate, &s.EndDate, &s.RegistrationDeadline, &s.MatchFrequencyDays,
		&s.PreferredMatchTime, &s.MinTeams, &s.MaxTeams, &s.RoundsPerPairing,
		&s.PointsForWin, &s.PointsForDraw, &s.PointsForLoss, &s.AllowDraws,
		&s.HomeAwayBalanceRequired, &s.DefaultVenue, &s.Status, &s.FixturesStatus,
		&s.FixturesError, &s.FixturesGeneratedAt, &s.RegisteredTeamsCount,
		&s.TotalMatchesPlanned, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

type CreateSeasonParams struct {
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
}

const createSeason = `INSERT INTO seasons (
	id, league_id, name, season_year, tournament_format, start_date, end_date,
	registration_deadline, match_frequency_days, preferred_match_time,
	min_teams, max_teams, rounds_per_pairing, points_for_win, points_for_draw,
	points_for_loss, allow_draws, home_away_balance_required, default_venue,
	status, fixtures_status, registered_teams_count, total_matches_planned,
	version, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, 0, 0, 1, now(), now()
) RETURNING ` + seasonColumns

func (q *Queries) CreateSeason(ctx context.Context, arg CreateSeasonParams) (Season, error) {
	row := q.db.QueryRowContext(ctx, createSeason,
		arg.ID, arg.LeagueID, arg.Name, arg.SeasonYear, arg.TournamentFormat,
		arg.StartDate, arg.EndDate, arg.RegistrationDeadline, arg.MatchFrequencyDays,
		arg.PreferredMatchTime, arg.MinTeams, arg.MaxTeams, arg.RoundsPerPairing,
		arg.PointsForWin, arg.PointsForDraw, arg.PointsForLoss, arg.AllowDraws,
		arg.HomeAwayBalanceRequired, arg.DefaultVenue, arg.Status, arg.FixturesStatus,
	)
	return scanSeason(row)
}

const getSeason = `SELECT ` + seasonColumns + ` FROM seasons WHERE id = $1`

func (q *Queries) GetSeason(ctx context.Context, id uuid.UUID) (Season, error) {
	return scanSeason(q.db.QueryRowContext(ctx, getSeason, id))
}

const getSeasonsByLeague = `SELECT ` + seasonColumns + `
FROM seasons WHERE league_id = $1 ORDER BY season_year DESC, created_at DESC`

func (q *Queries) GetSeasonsByLeague(ctx context.Context, leagueID uuid.UUID) ([]Season, error) {
	rows, err := q.db.QueryContext(ctx, getSeasonsByLeague, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seasons []Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

type UpdateSeasonStatusParams struct {
	ID              uuid.UUID
	Status          string
	ExpectedVersion int64
}

const updateSeasonStatus = `UPDATE seasons
SET status = $2, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $3`

// UpdateSeasonStatus applies a version-checked status change and reports how
// many rows matched.
func (q *Queries) UpdateSeasonStatus(ctx context.Context, arg UpdateSeasonStatusParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateSeasonStatus, arg.ID, arg.Status, arg.ExpectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type BeginFixtureGenerationParams struct {
	ID              uuid.UUID
	ExpectedVersion int64
}

const beginFixtureGeneration = `UPDATE seasons
SET fixtures_status = 'generating', fixtures_error = NULL,
    version = version + 1, updated_at = now()
WHERE id = $1 AND version = $2
  AND status = 'registration'
  AND fixtures_status IN ('pending', 'error')`

// BeginFixtureGeneration is the compare-and-swap that serializes generation
// per season. Zero rows affected means the caller lost the race or the
// season is not in a generatable state.
func (q *Queries) BeginFixtureGeneration(ctx context.Context, arg BeginFixtureGenerationParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, beginFixtureGeneration, arg.ID, arg.ExpectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type CompleteFixtureGenerationParams struct {
	ID                  uuid.UUID
	GeneratedAt         time.Time
	TotalMatchesPlanned int32
}

const completeFixtureGeneration = `UPDATE seasons
SET fixtures_status = 'completed', fixtures_error = NULL,
    fixtures_generated_at = $2, total_matches_planned = $3,
    version = version + 1, updated_at = now()
WHERE id = $1 AND fixtures_status = 'generating'`

func (q *Queries) CompleteFixtureGeneration(ctx context.Context, arg CompleteFixtureGenerationParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, completeFixtureGeneration, arg.ID, arg.GeneratedAt, arg.TotalMatchesPlanned)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type FailFixtureGenerationParams struct {
	ID     uuid.UUID
	Reason string
}

const failFixtureGeneration = `UPDATE seasons
SET fixtures_status = 'error', fixtures_error = $2,
    version = version + 1, updated_at = now()
WHERE id = $1`

func (q *Queries) FailFixtureGeneration(ctx context.Context, arg FailFixtureGenerationParams) error {
	_, err := q.db.ExecContext(ctx, failFixtureGeneration, arg.ID, arg.Reason)
	return err
}

type ResetFixturesParams struct {
	ID              uuid.UUID
	ExpectedVersion int64
}

const resetFixtures = `UPDATE seasons
SET fixtures_status = 'pending', fixtures_error = NULL,
    fixtures_generated_at = NULL, total_matches_planned = 0,
    version = version + 1, updated_at = now()
WHERE id = $1 AND version = $2 AND status = 'registration'`

func (q *Queries) ResetFixtures(ctx context.Context, arg ResetFixturesParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, resetFixtures, arg.ID, arg.ExpectedVersion)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const cancelSeason = `UPDATE seasons
SET status = 'cancelled', version = version + 1, updated_at = now()
WHERE id = $1 AND status NOT IN ('completed', 'cancelled')`

func (q *Queries) CancelSeason(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, cancelSeason, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listStaleGenerating = `SELECT ` + seasonColumns + `
FROM seasons WHERE fixtures_status = 'generating' AND updated_at < $1
ORDER BY updated_at ASC`

func (q *Queries) ListStaleGenerating(ctx context.Context, cutoff time.Time) ([]Season, error) {
	rows, err := q.db.QueryContext(ctx, listStaleGenerating, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seasons []Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}
