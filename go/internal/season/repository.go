// Package season implements the season lifecycle manager: the single source
// of truth for season and fixtures state transitions, and the orchestration
// of the generation pipeline (registry → generator → scheduler → persistence).
package season

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gansovic/matchday/go/internal/apperrors"
	"github.com/Gansovic/matchday/go/internal/models"
	"github.com/Gansovic/matchday/go/internal/outbox"
	"github.com/Gansovic/matchday/go/internal/season/db"
	"github.com/Gansovic/matchday/go/internal/sqlutil"
)

// ErrVersionConflict is returned by version-checked writes when the season
// row changed under the caller. The app layer re-reads and maps it to
// GENERATION_IN_PROGRESS or CONCURRENT_MODIFICATION.
var ErrVersionConflict = errors.New("season version conflict")

// Repository implements season and match data access operations.
type Repository struct {
	sqlDB   *sql.DB
	queries *db.Queries
}

// NewRepository creates a new season repository.
func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		sqlDB:   sqlDB,
		queries: db.New(sqlDB),
	}
}

// CreateSeason persists a new season in draft status with pending fixtures.
func (r *Repository) CreateSeason(ctx context.Context, id uuid.UUID, cfg models.SeasonConfig) (*models.Season, error) {
	var stored db.Season
	err := sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		var err error
		stored, err = qtx.CreateSeason(ctx, db.CreateSeasonParams{
			ID:                      id,
			LeagueID:                cfg.LeagueID,
			Name:                    cfg.Name,
			SeasonYear:              int32(cfg.SeasonYear),
			TournamentFormat:        string(cfg.TournamentFormat),
			StartDate:               cfg.StartDate,
			EndDate:                 cfg.EndDate,
			RegistrationDeadline:    sqlutil.ToSqlTime(cfg.RegistrationDeadline),
			MatchFrequencyDays:      int32(cfg.MatchFrequencyDays),
			PreferredMatchTime:      cfg.PreferredMatchTime,
			MinTeams:                int32(cfg.MinTeams),
			MaxTeams:                int32(cfg.MaxTeams),
			RoundsPerPairing:        int32(cfg.RoundsPerPairing),
			PointsForWin:            int32(cfg.PointsForWin),
			PointsForDraw:           int32(cfg.PointsForDraw),
			PointsForLoss:           int32(cfg.PointsForLoss),
			AllowDraws:              cfg.AllowDraws,
			HomeAwayBalanceRequired: cfg.HomeAwayBalanceRequired,
			DefaultVenue:            sqlutil.ToSqlString(cfg.DefaultVenue),
			Status:                  string(models.SeasonStatusDraft),
			FixturesStatus:          string(models.FixturesStatusPending),
		})
		if err != nil {
			return fmt.Errorf("insert season: %w", err)
		}

		event, err := outbox.NewEvent(id, outbox.EventSeasonCreated, outbox.SeasonCreatedPayload{
			SeasonID:   id.String(),
			LeagueID:   cfg.LeagueID.String(),
			Name:       cfg.Name,
			SeasonYear: cfg.SeasonYear,
			Format:     string(cfg.TournamentFormat),
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	model := dbSeasonToModel(stored)
	return &model, nil
}

// GetSeason retrieves a season by ID.
func (r *Repository) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	row, err := r.queries.GetSeason(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.CodeSeasonNotFound, "season %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get season: %w", err)
	}
	model := dbSeasonToModel(row)
	return &model, nil
}

// GetSeasonsByLeague retrieves a league's seasons, newest first.
func (r *Repository) GetSeasonsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Season, error) {
	rows, err := r.queries.GetSeasonsByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get seasons by league: %w", err)
	}
	seasons := make([]models.Season, len(rows))
	for i, row := range rows {
		seasons[i] = dbSeasonToModel(row)
	}
	return seasons, nil
}

// OpenRegistration flips the season into registration with a version check.
func (r *Repository) OpenRegistration(ctx context.Context, season *models.Season) error {
	return sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		affected, err := qtx.UpdateSeasonStatus(ctx, db.UpdateSeasonStatusParams{
			ID:              season.ID,
			Status:          string(models.SeasonStatusRegistration),
			ExpectedVersion: season.Version,
		})
		if err != nil {
			return fmt.Errorf("open registration: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}

		event, err := outbox.NewEvent(season.ID, outbox.EventRegistrationOpened, outbox.RegistrationOpenedPayload{
			SeasonID: season.ID.String(),
			Deadline: season.Config.RegistrationDeadline,
			MinTeams: season.Config.MinTeams,
			MaxTeams: season.Config.MaxTeams,
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
}

// ActivateSeason flips the season active with a version check.
func (r *Repository) ActivateSeason(ctx context.Context, season *models.Season, activatedAt time.Time) error {
	return sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		affected, err := qtx.UpdateSeasonStatus(ctx, db.UpdateSeasonStatusParams{
			ID:              season.ID,
			Status:          string(models.SeasonStatusActive),
			ExpectedVersion: season.Version,
		})
		if err != nil {
			return fmt.Errorf("activate season: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}

		event, err := outbox.NewEvent(season.ID, outbox.EventSeasonActivated, outbox.SeasonActivatedPayload{
			SeasonID:    season.ID.String(),
			ActivatedAt: activatedAt,
			TeamCount:   season.RegisteredTeamsCount,
			MatchCount:  season.TotalMatchesPlanned,
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
}

// BeginGeneration performs the compare-and-swap that marks the season as
// generating. ErrVersionConflict means another caller won the race or the
// season left a generatable state.
func (r *Repository) BeginGeneration(ctx context.Context, seasonID uuid.UUID, expectedVersion int64) error {
	affected, err := r.queries.BeginFixtureGeneration(ctx, db.BeginFixtureGenerationParams{
		ID:              seasonID,
		ExpectedVersion: expectedVersion,
	})
	if err != nil {
		return fmt.Errorf("begin fixture generation: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// CompleteGeneration persists the full match set and the completed fixtures
// status in one transaction. Either everything commits — match rows, season
// counters, outbox event — or nothing does.
func (r *Repository) CompleteGeneration(ctx context.Context, season *models.Season, matches []models.Match, generatedAt time.Time, eventType string) error {
	return sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		for _, m := range matches {
			err := qtx.InsertMatch(ctx, db.InsertMatchParams{
				ID:          m.ID,
				SeasonID:    m.SeasonID,
				HomeTeamID:  m.HomeTeamID,
				AwayTeamID:  m.AwayTeamID,
				RoundNumber: int32(m.RoundNumber),
				MatchDate:   m.MatchDate,
				Status:      string(m.Status),
				Venue:       sqlutil.ToSqlString(m.Venue),
			})
			if err != nil {
				return fmt.Errorf("insert match: %w", err)
			}
		}

		affected, err := qtx.CompleteFixtureGeneration(ctx, db.CompleteFixtureGenerationParams{
			ID:                  season.ID,
			GeneratedAt:         generatedAt,
			TotalMatchesPlanned: int32(len(matches)),
		})
		if err != nil {
			return fmt.Errorf("complete fixture generation: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}

		event, err := outbox.NewEvent(season.ID, eventType, outbox.FixturesGeneratedPayload{
			SeasonID:    season.ID.String(),
			GeneratedAt: generatedAt,
			TeamCount:   season.RegisteredTeamsCount,
			MatchCount:  len(matches),
			Rounds:      maxRound(matches),
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
}

// FailGeneration records a failed generation attempt: fixtures status moves
// to error with the reason attached, and the failure event is queued.
func (r *Repository) FailGeneration(ctx context.Context, seasonID uuid.UUID, code apperrors.Code, reason string, failedAt time.Time) error {
	return sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		err := qtx.FailFixtureGeneration(ctx, db.FailFixtureGenerationParams{
			ID:     seasonID,
			Reason: reason,
		})
		if err != nil {
			return fmt.Errorf("fail fixture generation: %w", err)
		}

		event, err := outbox.NewEvent(seasonID, outbox.EventGenerationFailed, outbox.GenerationFailedPayload{
			SeasonID: seasonID.String(),
			FailedAt: failedAt,
			Code:     string(code),
			Reason:   reason,
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
}

// ResetFixtures deletes the season's generated matches and returns the
// fixtures pipeline to pending, version-checked.
func (r *Repository) ResetFixtures(ctx context.Context, season *models.Season) (int, error) {
	var deleted int64
	err := sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		var err error
		deleted, err = qtx.DeleteSeasonMatches(ctx, season.ID)
		if err != nil {
			return fmt.Errorf("delete season matches: %w", err)
		}

		affected, err := qtx.ResetFixtures(ctx, db.ResetFixturesParams{
			ID:              season.ID,
			ExpectedVersion: season.Version,
		})
		if err != nil {
			return fmt.Errorf("reset fixtures: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// CancelSeason cancels the season and every match that is not already
// completed, in one transaction.
func (r *Repository) CancelSeason(ctx context.Context, season *models.Season, reason string, cancelledAt time.Time) (int, error) {
	var cancelled int64
	err := sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		affected, err := qtx.CancelSeason(ctx, season.ID)
		if err != nil {
			return fmt.Errorf("cancel season: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}

		cancelled, err = qtx.CancelOpenMatches(ctx, season.ID)
		if err != nil {
			return fmt.Errorf("cancel open matches: %w", err)
		}

		event, err := outbox.NewEvent(season.ID, outbox.EventSeasonCancelled, outbox.SeasonCancelledPayload{
			SeasonID:         season.ID.String(),
			CancelledAt:      cancelledAt,
			Reason:           reason,
			MatchesCancelled: int(cancelled),
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
	if err != nil {
		return 0, err
	}
	return int(cancelled), nil
}

// CancelTeamMatches cancels the team's scheduled matches for a season.
func (r *Repository) CancelTeamMatches(ctx context.Context, seasonID, teamID uuid.UUID, cancelledAt time.Time) (int, error) {
	var cancelled int64
	err := sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		qtx := r.queries.WithTx(tx)

		var err error
		cancelled, err = qtx.CancelMatchesForTeam(ctx, db.CancelMatchesForTeamParams{
			SeasonID: seasonID,
			TeamID:   teamID,
		})
		if err != nil {
			return fmt.Errorf("cancel matches for team: %w", err)
		}

		event, err := outbox.NewEvent(seasonID, outbox.EventMatchesCancelled, outbox.MatchesCancelledPayload{
			SeasonID:    seasonID.String(),
			TeamID:      teamID.String(),
			CancelledAt: cancelledAt,
			Count:       int(cancelled),
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
	if err != nil {
		return 0, err
	}
	return int(cancelled), nil
}

// ListSeasonMatches returns the season's matches ordered by round.
func (r *Repository) ListSeasonMatches(ctx context.Context, seasonID uuid.UUID) ([]models.Match, error) {
	rows, err := r.queries.ListSeasonMatches(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season matches: %w", err)
	}
	matches := make([]models.Match, len(rows))
	for i, row := range rows {
		matches[i] = dbMatchToModel(row)
	}
	return matches, nil
}

// CountSeasonMatches returns the number of persisted matches for a season.
func (r *Repository) CountSeasonMatches(ctx context.Context, seasonID uuid.UUID) (int, error) {
	count, err := r.queries.CountSeasonMatches(ctx, seasonID)
	if err != nil {
		return 0, fmt.Errorf("count season matches: %w", err)
	}
	return int(count), nil
}

// ListStaleGenerating returns seasons stuck in generating since before the
// cutoff.
func (r *Repository) ListStaleGenerating(ctx context.Context, cutoff time.Time) ([]models.Season, error) {
	rows, err := r.queries.ListStaleGenerating(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale generating seasons: %w", err)
	}
	seasons := make([]models.Season, len(rows))
	for i, row := range rows {
		seasons[i] = dbSeasonToModel(row)
	}
	return seasons, nil
}

// RecordStalled queues a generation-stalled event without touching the
// season row; resetting stays an operator decision.
func (r *Repository) RecordStalled(ctx context.Context, season *models.Season, detectedAt time.Time) error {
	return sqlutil.Run(ctx, r.sqlDB, func(tx *sql.Tx) error {
		event, err := outbox.NewEvent(season.ID, outbox.EventGenerationStalled, outbox.GenerationStalledPayload{
			SeasonID:        season.ID.String(),
			GeneratingSince: season.UpdatedAt,
			DetectedAt:      detectedAt,
		})
		if err != nil {
			return err
		}
		return outbox.InsertTx(ctx, tx, event)
	})
}

func maxRound(matches []models.Match) int {
	max := 0
	for _, m := range matches {
		if m.RoundNumber > max {
			max = m.RoundNumber
		}
	}
	return max
}

func dbSeasonToModel(row db.Season) models.Season {
	return models.Season{
		ID: row.ID,
		Config: models.SeasonConfig{
			LeagueID:                row.LeagueID,
			Name:                    row.Name,
			SeasonYear:              int(row.SeasonYear),
			TournamentFormat:        models.TournamentFormat(row.TournamentFormat),
			StartDate:               row.StartDate,
			EndDate:                 row.EndDate,
			RegistrationDeadline:    sqlutil.FromSqlTime(row.RegistrationDeadline),
			MatchFrequencyDays:      int(row.MatchFrequencyDays),
			PreferredMatchTime:      row.PreferredMatchTime,
			MinTeams:                int(row.MinTeams),
			MaxTeams:                int(row.MaxTeams),
			RoundsPerPairing:        int(row.RoundsPerPairing),
			PointsForWin:            int(row.PointsForWin),
			PointsForDraw:           int(row.PointsForDraw),
			PointsForLoss:           int(row.PointsForLoss),
			AllowDraws:              row.AllowDraws,
			HomeAwayBalanceRequired: row.HomeAwayBalanceRequired,
			DefaultVenue:            sqlutil.FromSqlString(row.DefaultVenue, ""),
		},
		Status:               models.SeasonStatus(row.Status),
		FixturesStatus:       models.FixturesStatus(row.FixturesStatus),
		FixturesError:        sqlutil.FromSqlString(row.FixturesError, ""),
		FixturesGeneratedAt:  sqlutil.FromSqlTime(row.FixturesGeneratedAt),
		RegisteredTeamsCount: int(row.RegisteredTeamsCount),
		TotalMatchesPlanned:  int(row.TotalMatchesPlanned),
		Version:              row.Version,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}

func dbMatchToModel(row db.Match) models.Match {
	return models.Match{
		ID:          row.ID,
		SeasonID:    row.SeasonID,
		HomeTeamID:  row.HomeTeamID,
		AwayTeamID:  row.AwayTeamID,
		RoundNumber: int(row.RoundNumber),
		MatchDate:   row.MatchDate,
		Status:      models.MatchStatus(row.Status),
		HomeScore:   sqlutil.FromSqlInt32(row.HomeScore),
		AwayScore:   sqlutil.FromSqlInt32(row.AwayScore),
		Venue:       sqlutil.FromSqlString(row.Venue, ""),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
