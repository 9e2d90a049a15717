package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const matchColumns = `id, season_id, home_team_id, away_team_id, round_number,
	match_date, status, home_score, away_score, venue, created_at, updated_at`

func scanMatch(row interface{ Scan(dest ...any) error }) (Match, error) {
	var m Match
	err := row.Scan(
		&m.ID, &m.SeasonID, &m.HomeTeamID, &m.AwayTeamID, &m.RoundNumber,
		&m.MatchDate, &m.Status, &m.HomeScore, &m.AwayScore, &m.Venue,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

type InsertMatchParams struct {
	ID          uuid.UUID
	SeasonID    uuid.UUID
	HomeTeamID  uuid.UUID
	AwayTeamID  uuid.UUID
	RoundNumber int32
	MatchDate   time.Time
	Status      string
	Venue       sql.NullString
}

const insertMatch = `INSERT INTO matches (
	id, season_id, home_team_id, away_team_id, round_number, match_date,
	status, venue, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`

func (q *Queries) InsertMatch(ctx context.Context, arg InsertMatchParams) error {
	_, err := q.db.ExecContext(ctx, insertMatch,
		arg.ID, arg.SeasonID, arg.HomeTeamID, arg.AwayTeamID,
		arg.RoundNumber, arg.MatchDate, arg.Status, arg.Venue,
	)
	return err
}

const listSeasonMatches = `SELECT ` + matchColumns + `
FROM matches WHERE season_id = $1 ORDER BY round_number ASC, match_date ASC`

func (q *Queries) ListSeasonMatches(ctx context.Context, seasonID uuid.UUID) ([]Match, error) {
	rows, err := q.db.QueryContext(ctx, listSeasonMatches, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const countSeasonMatches = `SELECT count(*) FROM matches WHERE season_id = $1`

func (q *Queries) CountSeasonMatches(ctx context.Context, seasonID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countSeasonMatches, seasonID).Scan(&count)
	return count, err
}

const deleteSeasonMatches = `DELETE FROM matches WHERE season_id = $1`

func (q *Queries) DeleteSeasonMatches(ctx context.Context, seasonID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSeasonMatches, seasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type CancelMatchesForTeamParams struct {
	SeasonID uuid.UUID
	TeamID   uuid.UUID
}

const cancelMatchesForTeam = `UPDATE matches
SET status = 'cancelled', updated_at = now()
WHERE season_id = $1 AND (home_team_id = $2 OR away_team_id = $2)
  AND status = 'scheduled'`

// CancelMatchesForTeam cancels the team's unplayed fixtures. Completed and
// in-progress matches keep their history.
func (q *Queries) CancelMatchesForTeam(ctx context.Context, arg CancelMatchesForTeamParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, cancelMatchesForTeam, arg.SeasonID, arg.TeamID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const cancelOpenMatches = `UPDATE matches
SET status = 'cancelled', updated_at = now()
WHERE season_id = $1 AND status IN ('scheduled', 'in_progress')`

func (q *Queries) CancelOpenMatches(ctx context.Context, seasonID uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, cancelOpenMatches, seasonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
