package seasonteam

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Gansovic/matchday/go/internal/apperrors"
	"github.com/Gansovic/matchday/go/internal/models"
)

// SeasonTeamRepository defines what the registry app layer needs from the
// season team repository.
type SeasonTeamRepository interface {
	RegisterTeam(ctx context.Context, team models.SeasonTeam) (*models.SeasonTeam, int, error)
	WithdrawTeam(ctx context.Context, team models.SeasonTeam, withdrawnAt time.Time) (int, error)
	GetActiveTeam(ctx context.Context, seasonID, teamID uuid.UUID) (*models.SeasonTeam, error)
	CountRegisteredTeams(ctx context.Context, seasonID uuid.UUID) (int, error)
	ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error)
	ListTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error)
}

// SeasonReader gives the registry read access to the season row without
// pulling in the lifecycle manager.
type SeasonReader interface {
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
}

// MatchCanceller cancels a withdrawn team's unplayed fixtures. Implemented by
// the season lifecycle manager; the registry never touches match rows itself.
type MatchCanceller interface {
	CancelTeamMatches(ctx context.Context, seasonID, teamID uuid.UUID) (int, error)
}

// App handles season team registry business logic.
type App struct {
	repo      SeasonTeamRepository
	seasons   SeasonReader
	canceller MatchCanceller
	clock     clockwork.Clock
}

// NewApp creates a new registry App.
func NewApp(repo SeasonTeamRepository, seasons SeasonReader, canceller MatchCanceller, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		seasons:   seasons,
		canceller: canceller,
		clock:     clock,
	}
}

// RegisterTeam registers a team for a season.
func (a *App) RegisterTeam(ctx context.Context, seasonID, teamID uuid.UUID, homeVenue string) (*models.SeasonTeam, error) {
	season, err := a.seasons.GetSeason(ctx, seasonID)
	if err != nil {
		return nil, err
	}

	if season.Status != models.SeasonStatusRegistration {
		return nil, apperrors.Newf(apperrors.CodeRegistrationClosed,
			"season %s is not accepting registrations (status %s)", seasonID, season.Status)
	}
	now := a.clock.Now().UTC()
	if deadline := season.Config.RegistrationDeadline; deadline != nil && now.After(*deadline) {
		return nil, apperrors.Newf(apperrors.CodeRegistrationClosed,
			"registration deadline %s has passed", deadline.Format(time.RFC3339))
	}

	existing, err := a.repo.GetActiveTeam(ctx, seasonID, teamID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Newf(apperrors.CodeDuplicateRegistration,
			"team %s is already registered for season %s", teamID, seasonID)
	}

	// check capacity against the registration rows, not the cached count,
	// so a stale season row cannot admit a team past the cap
	registered, err := a.repo.CountRegisteredTeams(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	if registered >= season.Config.MaxTeams {
		return nil, apperrors.Newf(apperrors.CodeSeasonFull,
			"season %s already has the maximum of %d teams", seasonID, season.Config.MaxTeams)
	}

	team, count, err := a.repo.RegisterTeam(ctx, models.SeasonTeam{
		ID:               uuid.New(),
		SeasonID:         seasonID,
		TeamID:           teamID,
		RegistrationDate: now,
		Status:           models.SeasonTeamStatusRegistered,
		HomeVenue:        homeVenue,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register team: %w", err)
	}

	log.Info().
		Str("season_id", seasonID.String()).
		Str("team_id", teamID.String()).
		Int("registered_count", count).
		Msg("team registered for season")

	return team, nil
}

// WithdrawTeam withdraws a team from a season. If fixtures were already
// generated, the team's unplayed matches are cancelled; completed matches
// keep their history.
func (a *App) WithdrawTeam(ctx context.Context, seasonID, teamID uuid.UUID) error {
	season, err := a.seasons.GetSeason(ctx, seasonID)
	if err != nil {
		return err
	}

	team, err := a.repo.GetActiveTeam(ctx, seasonID, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return apperrors.Newf(apperrors.CodeTeamNotFound,
			"team %s has no active registration for season %s", teamID, seasonID)
	}

	now := a.clock.Now().UTC()
	count, err := a.repo.WithdrawTeam(ctx, *team, now)
	if err != nil {
		return fmt.Errorf("failed to withdraw team: %w", err)
	}

	log.Info().
		Str("season_id", seasonID.String()).
		Str("team_id", teamID.String()).
		Int("registered_count", count).
		Msg("team withdrawn from season")

	if season.FixturesStatus == models.FixturesStatusCompleted {
		cancelled, err := a.canceller.CancelTeamMatches(ctx, seasonID, teamID)
		if err != nil {
			return fmt.Errorf("failed to cancel matches for withdrawn team: %w", err)
		}
		log.Info().
			Str("season_id", seasonID.String()).
			Str("team_id", teamID.String()).
			Int("matches_cancelled", cancelled).
			Msg("cancelled unplayed matches for withdrawn team")
	}

	return nil
}

// ListRegisteredTeams returns the season's non-withdrawn teams ordered by
// registration date ascending. This ordering is what makes fixture
// generation deterministic for a fixed registration history.
func (a *App) ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	return a.repo.ListRegisteredTeams(ctx, seasonID)
}

// ListTeams returns every registration for the season, withdrawn included.
func (a *App) ListTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	return a.repo.ListTeams(ctx, seasonID)
}
