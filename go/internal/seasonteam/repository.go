// Package seasonteam implements the season team registry: team registration
// and withdrawal for a season, and maintenance of the season's authoritative
// registered-team count.
package seasonteam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gansovic/matchday/go/internal/models"
	"github.com/Gansovic/matchday/go/internal/outbox"
	"github.com/Gansovic/matchday/go/internal/seasonteam/db"
	"github.com/Gansovic/matchday/go/internal/sqlutil"
)

// Repository implements season team data access operations.
type Repository struct {
	sqlDB   *sql.DB
	queries *db.Queries
}

// NewRepository creates a new season team repository.
func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		sqlDB:   sqlDB,
		queries: db.New(sqlDB),
	}
}

// RegisterTeam inserts the registration row, bumps the cached team count on
// the season, and records the outbox event, all in one transaction. Returns
// the stored row and the count after the insert.
func (r *Repository) RegisterTeam(ctx context.Context, team models.SeasonTeam) (*models.SeasonTeam, int, error) {
	var stored db.SeasonTeam
	var newCount int32

	err := sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		var err error
		stored, err = qtx.InsertSeasonTeam(ctx, db.InsertSeasonTeamParams{
			ID:               team.ID,
			SeasonID:         team.SeasonID,
			TeamID:           team.TeamID,
			RegistrationDate: team.RegistrationDate,
			Status:           string(team.Status),
			HomeVenue:        sqlutil.ToSqlString(team.HomeVenue),
		})
		if err != nil {
			return fmt.Errorf("insert season team: %w", err)
		}

		err = qtx.AdjustRegisteredTeamsCount(ctx, db.AdjustRegisteredTeamsCountParams{
			SeasonID: team.SeasonID,
			Delta:    1,
		})
		if err != nil {
			return fmt.Errorf("increment registered teams count: %w", err)
		}

		newCount, err = qtx.GetRegisteredTeamsCount(ctx, team.SeasonID)
		if err != nil {
			return fmt.Errorf("read registered teams count: %w", err)
		}

		event, err := outbox.NewEvent(team.SeasonID, outbox.EventTeamRegistered, outbox.TeamRegisteredPayload{
			SeasonID:        team.SeasonID.String(),
			TeamID:          team.TeamID.String(),
			RegisteredAt:    team.RegistrationDate,
			RegisteredCount: int(newCount),
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
	if err != nil {
		return nil, 0, err
	}

	model := dbSeasonTeamToModel(stored)
	return &model, int(newCount), nil
}

// WithdrawTeam marks the registration withdrawn and decrements the cached
// count transactionally. Returns the count after the withdrawal.
func (r *Repository) WithdrawTeam(ctx context.Context, team models.SeasonTeam, withdrawnAt time.Time) (int, error) {
	var newCount int32

	err := sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		err := qtx.UpdateSeasonTeamStatus(ctx, db.UpdateSeasonTeamStatusParams{
			ID:     team.ID,
			Status: string(models.SeasonTeamStatusWithdrawn),
		})
		if err != nil {
			return fmt.Errorf("mark season team withdrawn: %w", err)
		}

		err = qtx.AdjustRegisteredTeamsCount(ctx, db.AdjustRegisteredTeamsCountParams{
			SeasonID: team.SeasonID,
			Delta:    -1,
		})
		if err != nil {
			return fmt.Errorf("decrement registered teams count: %w", err)
		}

		newCount, err = qtx.GetRegisteredTeamsCount(ctx, team.SeasonID)
		if err != nil {
			return fmt.Errorf("read registered teams count: %w", err)
		}

		event, err := outbox.NewEvent(team.SeasonID, outbox.EventTeamWithdrawn, outbox.TeamWithdrawnPayload{
			SeasonID:        team.SeasonID.String(),
			TeamID:          team.TeamID.String(),
			WithdrawnAt:     withdrawnAt,
			RegisteredCount: int(newCount),
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
	if err != nil {
		return 0, err
	}

	return int(newCount), nil
}

// CountRegisteredTeams counts the season's non-withdrawn registration rows.
// This is the ground truth the cached registered_teams_count column mirrors.
func (r *Repository) CountRegisteredTeams(ctx context.Context, seasonID uuid.UUID) (int, error) {
	count, err := r.queries.CountActiveSeasonTeams(ctx, seasonID)
	if err != nil {
		return 0, fmt.Errorf("count registered season teams: %w", err)
	}
	return int(count), nil
}

// GetActiveTeam returns the team's non-withdrawn registration, or nil when
// the team has none.
func (r *Repository) GetActiveTeam(ctx context.Context, seasonID, teamID uuid.UUID) (*models.SeasonTeam, error) {
	row, err := r.queries.GetActiveSeasonTeam(ctx, db.GetActiveSeasonTeamParams{
		SeasonID: seasonID,
		TeamID:   teamID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active season team: %w", err)
	}
	model := dbSeasonTeamToModel(row)
	return &model, nil
}

// ListRegisteredTeams returns non-withdrawn registrations ordered by
// registration date ascending, the canonical generator input order.
func (r *Repository) ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	rows, err := r.queries.ListActiveSeasonTeams(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list registered season teams: %w", err)
	}
	return dbSeasonTeamsToModels(rows), nil
}

// ListTeams returns every registration row for the season, withdrawn included.
func (r *Repository) ListTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	rows, err := r.queries.ListSeasonTeams(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season teams: %w", err)
	}
	return dbSeasonTeamsToModels(rows), nil
}

func dbSeasonTeamToModel(row db.SeasonTeam) models.SeasonTeam {
	return models.SeasonTeam{
		ID:               row.ID,
		SeasonID:         row.SeasonID,
		TeamID:           row.TeamID,
		RegistrationDate: row.RegistrationDate,
		Status:           models.SeasonTeamStatus(row.Status),
		HomeVenue:        sqlutil.FromSqlString(row.HomeVenue, ""),
	}
}

func dbSeasonTeamsToModels(rows []db.SeasonTeam) []models.SeasonTeam {
	teams := make([]models.SeasonTeam, len(rows))
	for i, row := range rows {
		teams[i] = dbSeasonTeamToModel(row)
	}
	return teams
}
