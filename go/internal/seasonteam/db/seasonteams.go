package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const seasonTeamColumns = `id, season_id, team_id, registration_date, status,
	home_venue, created_at, updated_at`

func scanSeasonTeam(row interface{ Scan(dest ...any) error }) (SeasonTeam, error) {
	var st SeasonTeam
	err := row.Scan(
		&st.ID, &st.SeasonID, &st.TeamID, &st.RegistrationDate, &st.Status,
		&st.HomeVenue, &st.CreatedAt, &st.UpdatedAt,
	)
	return st, err
}

type InsertSeasonTeamParams struct {
	ID               uuid.UUID
	SeasonID         uuid.UUID
	TeamID           uuid.UUID
	RegistrationDate time.Time
	Status           string
	HomeVenue        sql.NullString
}

const insertSeasonTeam = `INSERT INTO season_teams (
	id, season_id, team_id, registration_date, status, home_venue,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
RETURNING ` + seasonTeamColumns

func (q *Queries) InsertSeasonTeam(ctx context.Context, arg InsertSeasonTeamParams) (SeasonTeam, error) {
	row := q.db.QueryRowContext(ctx, insertSeasonTeam,
		arg.ID, arg.SeasonID, arg.TeamID, arg.RegistrationDate, arg.Status, arg.HomeVenue,
	)
	return scanSeasonTeam(row)
}

type GetActiveSeasonTeamParams struct {
	SeasonID uuid.UUID
	TeamID   uuid.UUID
}

const getActiveSeasonTeam = `SELECT ` + seasonTeamColumns + `
FROM season_teams
WHERE season_id = $1 AND team_id = $2 AND status != 'withdrawn'`

// GetActiveSeasonTeam returns the team's non-withdrawn registration row,
// or sql.ErrNoRows when none exists.
func (q *Queries) GetActiveSeasonTeam(ctx context.Context, arg GetActiveSeasonTeamParams) (SeasonTeam, error) {
	row := q.db.QueryRowContext(ctx, getActiveSeasonTeam, arg.SeasonID, arg.TeamID)
	return scanSeasonTeam(row)
}

type UpdateSeasonTeamStatusParams struct {
	ID     uuid.UUID
	Status string
}

const updateSeasonTeamStatus = `UPDATE season_teams
SET status = $2, updated_at = now()
WHERE id = $1`

func (q *Queries) UpdateSeasonTeamStatus(ctx context.Context, arg UpdateSeasonTeamStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateSeasonTeamStatus, arg.ID, arg.Status)
	return err
}

const listSeasonTeams = `SELECT ` + seasonTeamColumns + `
FROM season_teams WHERE season_id = $1 ORDER BY registration_date ASC, id ASC`

func (q *Queries) ListSeasonTeams(ctx context.Context, seasonID uuid.UUID) ([]SeasonTeam, error) {
	return q.listTeams(ctx, listSeasonTeams, seasonID)
}

const listActiveSeasonTeams = `SELECT ` + seasonTeamColumns + `
FROM season_teams WHERE season_id = $1 AND status != 'withdrawn'
ORDER BY registration_date ASC, id ASC`

// ListActiveSeasonTeams returns non-withdrawn registrations in registration
// order. This ordering is the canonical generator input.
func (q *Queries) ListActiveSeasonTeams(ctx context.Context, seasonID uuid.UUID) ([]SeasonTeam, error) {
	return q.listTeams(ctx, listActiveSeasonTeams, seasonID)
}

func (q *Queries) listTeams(ctx context.Context, query string, seasonID uuid.UUID) ([]SeasonTeam, error) {
	rows, err := q.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var teams []SeasonTeam
	for rows.Next() {
		st, err := scanSeasonTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, st)
	}
	return teams, rows.Err()
}

type AdjustRegisteredTeamsCountParams struct {
	SeasonID uuid.UUID
	Delta    int32
}

const adjustRegisteredTeamsCount = `UPDATE seasons
SET registered_teams_count = registered_teams_count + $2,
    version = version + 1, updated_at = now()
WHERE id = $1`

// AdjustRegisteredTeamsCount maintains the cached count on the season row.
// The registry is the only writer of this column, always inside the same
// transaction as the season_teams change, which keeps the count invariant.
func (q *Queries) AdjustRegisteredTeamsCount(ctx context.Context, arg AdjustRegisteredTeamsCountParams) error {
	_, err := q.db.ExecContext(ctx, adjustRegisteredTeamsCount, arg.SeasonID, arg.Delta)
	return err
}

const getRegisteredTeamsCount = `SELECT registered_teams_count FROM seasons WHERE id = $1`

func (q *Queries) GetRegisteredTeamsCount(ctx context.Context, seasonID uuid.UUID) (int32, error) {
	var count int32
	err := q.db.QueryRowContext(ctx, getRegisteredTeamsCount, seasonID).Scan(&count)
	return count, err
}

const countActiveSeasonTeams = `SELECT count(*) FROM season_teams
WHERE season_id = $1 AND status != 'withdrawn'`

func (q *Queries) CountActiveSeasonTeams(ctx context.Context, seasonID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countActiveSeasonTeams, seasonID).Scan(&count)
	return count, err
}
