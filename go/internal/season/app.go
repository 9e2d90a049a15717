package season

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/Gansovic/matchday/go/internal/apperrors"
	"github.com/Gansovic/matchday/go/internal/fixtures"
	"github.com/Gansovic/matchday/go/internal/models"
	"github.com/Gansovic/matchday/go/internal/outbox"
)

// SeasonRepository defines what the lifecycle manager needs from the season
// repository.
type SeasonRepository interface {
	CreateSeason(ctx context.Context, id uuid.UUID, cfg models.SeasonConfig) (*models.Season, error)
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
	GetSeasonsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Season, error)
	OpenRegistration(ctx context.Context, season *models.Season) error
	ActivateSeason(ctx context.Context, season *models.Season, activatedAt time.Time) error
	BeginGeneration(ctx context.Context, seasonID uuid.UUID, expectedVersion int64) error
	CompleteGeneration(ctx context.Context, season *models.Season, matches []models.Match, generatedAt time.Time, eventType string) error
	FailGeneration(ctx context.Context, seasonID uuid.UUID, code apperrors.Code, reason string, failedAt time.Time) error
	ResetFixtures(ctx context.Context, season *models.Season) (int, error)
	CancelSeason(ctx context.Context, season *models.Season, reason string, cancelledAt time.Time) (int, error)
	CancelTeamMatches(ctx context.Context, seasonID, teamID uuid.UUID, cancelledAt time.Time) (int, error)
	ListSeasonMatches(ctx context.Context, seasonID uuid.UUID) ([]models.Match, error)
	CountSeasonMatches(ctx context.Context, seasonID uuid.UUID) (int, error)
	ListStaleGenerating(ctx context.Context, cutoff time.Time) ([]models.Season, error)
	RecordStalled(ctx context.Context, season *models.Season, detectedAt time.Time) error
}

// TeamLister gives the lifecycle manager read access to the registry without
// pulling in its business logic.
type TeamLister interface {
	ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error)
}

// SeasonDetails bundles a season with its registered teams and persisted
// matches.
type SeasonDetails struct {
	Season  models.Season       `json:"season"`
	Teams   []models.SeasonTeam `json:"teams"`
	Matches []models.Match      `json:"matches"`
}

// App handles season lifecycle business logic. It owns every status
// transition; nothing else writes season state.
type App struct {
	repo       SeasonRepository
	teams      TeamLister
	clock      clockwork.Clock
	staleAfter time.Duration
}

// NewApp creates a new season lifecycle App. staleAfter is how long a season
// may sit in generating before ResetStaleGeneration will touch it.
func NewApp(repo SeasonRepository, teams TeamLister, clock clockwork.Clock, staleAfter time.Duration) *App {
	return &App{
		repo:       repo,
		teams:      teams,
		clock:      clock,
		staleAfter: staleAfter,
	}
}

// validTransitions captures the season lifecycle state machine. Anything not
// listed is rejected with INVALID_STATE_TRANSITION.
var validTransitions = map[models.SeasonStatus][]models.SeasonStatus{
	models.SeasonStatusDraft:        {models.SeasonStatusRegistration, models.SeasonStatusCancelled},
	models.SeasonStatusRegistration: {models.SeasonStatusActive, models.SeasonStatusCancelled},
	models.SeasonStatusActive:       {models.SeasonStatusCompleted, models.SeasonStatusCancelled},
	models.SeasonStatusCompleted:    {},
	models.SeasonStatusCancelled:    {},
}

func validateStatusTransition(from, to models.SeasonStatus) error {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return apperrors.Newf(apperrors.CodeInvalidStateTransition,
		"cannot transition season from %s to %s", from, to)
}

// CreateSeason validates the configuration and persists a new draft season.
func (a *App) CreateSeason(ctx context.Context, cfg models.SeasonConfig) (*models.Season, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	id := uuid.New()
	season, err := a.repo.CreateSeason(ctx, id, cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("season_id", season.ID.String()).
		Str("league_id", cfg.LeagueID.String()).
		Str("name", cfg.Name).
		Int("season_year", cfg.SeasonYear).
		Msg("created season")

	return season, nil
}

// GetSeason retrieves a season by ID.
func (a *App) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	return a.repo.GetSeason(ctx, id)
}

// GetSeasonsByLeague retrieves a league's seasons, newest first.
func (a *App) GetSeasonsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Season, error) {
	return a.repo.GetSeasonsByLeague(ctx, leagueID)
}

// GetSeasonDetails returns the season with its teams and matches. When the
// fixtures claim to be complete, the persisted match count is reconciled
// against the planned total; a mismatch flips the fixtures into error so the
// inconsistency is surfaced instead of silently served.
func (a *App) GetSeasonDetails(ctx context.Context, id uuid.UUID) (*SeasonDetails, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}

	if season.FixturesStatus == models.FixturesStatusCompleted {
		count, err := a.repo.CountSeasonMatches(ctx, id)
		if err != nil {
			return nil, err
		}
		if count != season.TotalMatchesPlanned {
			reason := fmt.Sprintf("fixture reconciliation failed: %d matches persisted, %d planned",
				count, season.TotalMatchesPlanned)
			log.Warn().
				Str("season_id", id.String()).
				Int("persisted", count).
				Int("planned", season.TotalMatchesPlanned).
				Msg("fixture reconciliation mismatch")
			if err := a.repo.FailGeneration(ctx, id, apperrors.CodeInternal, reason, a.clock.Now().UTC()); err != nil {
				return nil, err
			}
			season, err = a.repo.GetSeason(ctx, id)
			if err != nil {
				return nil, err
			}
		}
	}

	teams, err := a.teams.ListRegisteredTeams(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := a.repo.ListSeasonMatches(ctx, id)
	if err != nil {
		return nil, err
	}

	return &SeasonDetails{Season: *season, Teams: teams, Matches: matches}, nil
}

// GetSeasonMatches returns the season's matches in round order.
func (a *App) GetSeasonMatches(ctx context.Context, id uuid.UUID) ([]models.Match, error) {
	if _, err := a.repo.GetSeason(ctx, id); err != nil {
		return nil, err
	}
	return a.repo.ListSeasonMatches(ctx, id)
}

// OpenRegistration moves a draft season into registration.
func (a *App) OpenRegistration(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(season.Status, models.SeasonStatusRegistration); err != nil {
		return nil, err
	}

	if err := a.repo.OpenRegistration(ctx, season); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperrors.Newf(apperrors.CodeConcurrentModification,
				"season %s was modified concurrently", id)
		}
		return nil, err
	}

	log.Info().Str("season_id", id.String()).Msg("opened season registration")
	return a.repo.GetSeason(ctx, id)
}

// CloseRegistrationAndGenerateFixtures runs the full generation pipeline:
// claim the season via compare-and-swap, pull the registered teams, generate
// round-robin pairings, schedule them onto the calendar, and persist the
// matches with the completed status in one transaction. At most one caller
// per season gets past the claim.
func (a *App) CloseRegistrationAndGenerateFixtures(ctx context.Context, id uuid.UUID) (*models.Season, []models.Match, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if season.Status != models.SeasonStatusRegistration {
		return nil, nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"fixtures can only be generated while the season is in registration, status is %s", season.Status)
	}
	if season.Config.TournamentFormat != models.TournamentFormatLeague {
		return nil, nil, apperrors.Newf(apperrors.CodeUnsupportedFormat,
			"fixture generation supports the league format, season uses %s", season.Config.TournamentFormat)
	}

	if err := a.repo.BeginGeneration(ctx, id, season.Version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, nil, a.classifyClaimFailure(ctx, id)
		}
		return nil, nil, err
	}

	return a.runGeneration(ctx, id, outbox.EventFixturesGenerated)
}

// RegenerateFixtures discards a season's generated fixtures and runs the
// pipeline again. Only allowed while the season is still in registration;
// once active, the schedule is settled.
func (a *App) RegenerateFixtures(ctx context.Context, id uuid.UUID) (*models.Season, []models.Match, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if season.Status != models.SeasonStatusRegistration {
		return nil, nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"fixtures can only be regenerated while the season is in registration, status is %s", season.Status)
	}
	if season.FixturesStatus != models.FixturesStatusCompleted && season.FixturesStatus != models.FixturesStatusError {
		return nil, nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"no fixtures to regenerate, fixtures status is %s", season.FixturesStatus)
	}

	deleted, err := a.repo.ResetFixtures(ctx, season)
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, nil, a.classifyClaimFailure(ctx, id)
		}
		return nil, nil, err
	}
	log.Info().
		Str("season_id", id.String()).
		Int("matches_deleted", deleted).
		Msg("reset season fixtures for regeneration")

	season, err = a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := a.repo.BeginGeneration(ctx, id, season.Version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, nil, a.classifyClaimFailure(ctx, id)
		}
		return nil, nil, err
	}

	return a.runGeneration(ctx, id, outbox.EventFixturesRegenerated)
}

// PreviewFixtures runs the generator and scheduler against the current
// registrations without claiming the season or persisting anything.
func (a *App) PreviewFixtures(ctx context.Context, id uuid.UUID) ([]fixtures.PlannedMatch, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if season.Status != models.SeasonStatusRegistration {
		return nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"fixtures can only be previewed while the season is in registration, status is %s", season.Status)
	}
	if season.Config.TournamentFormat != models.TournamentFormatLeague {
		return nil, apperrors.Newf(apperrors.CodeUnsupportedFormat,
			"fixture generation supports the league format, season uses %s", season.Config.TournamentFormat)
	}

	teams, err := a.teams.ListRegisteredTeams(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(teams) < season.Config.MinTeams {
		return nil, apperrors.Newf(apperrors.CodeInsufficientTeams,
			"season needs at least %d teams, has %d", season.Config.MinTeams, len(teams))
	}
	if len(teams) > season.Config.MaxTeams {
		return nil, apperrors.Newf(apperrors.CodeTooManyTeams,
			"season allows at most %d teams, has %d", season.Config.MaxTeams, len(teams))
	}

	pairings, err := fixtures.Generate(teamIDs(teams), season.Config.RoundsPerPairing)
	if err != nil {
		return nil, err
	}
	return fixtures.Schedule(pairings, scheduleWindow(season), homeVenues(teams), season.Config.DefaultVenue)
}

// ActivateSeason moves a season with completed fixtures into active.
func (a *App) ActivateSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateStatusTransition(season.Status, models.SeasonStatusActive); err != nil {
		return nil, err
	}
	if season.FixturesStatus != models.FixturesStatusCompleted {
		return nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"season cannot activate before fixtures are generated, fixtures status is %s", season.FixturesStatus)
	}
	if season.RegisteredTeamsCount < season.Config.MinTeams {
		return nil, apperrors.Newf(apperrors.CodeInsufficientTeams,
			"season needs at least %d teams to activate, has %d", season.Config.MinTeams, season.RegisteredTeamsCount)
	}
	if season.RegisteredTeamsCount > season.Config.MaxTeams {
		return nil, apperrors.Newf(apperrors.CodeTooManyTeams,
			"season allows at most %d teams, has %d", season.Config.MaxTeams, season.RegisteredTeamsCount)
	}

	if err := a.repo.ActivateSeason(ctx, season, a.clock.Now().UTC()); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperrors.Newf(apperrors.CodeConcurrentModification,
				"season %s was modified concurrently", id)
		}
		return nil, err
	}

	log.Info().
		Str("season_id", id.String()).
		Int("teams", season.RegisteredTeamsCount).
		Int("matches", season.TotalMatchesPlanned).
		Msg("activated season")
	return a.repo.GetSeason(ctx, id)
}

// CancelSeason cancels a season and every match that has not been played.
func (a *App) CancelSeason(ctx context.Context, id uuid.UUID, reason string) (*models.Season, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if season.IsTerminal() {
		return nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"cannot cancel a season that is already %s", season.Status)
	}

	cancelled, err := a.repo.CancelSeason(ctx, season, reason, a.clock.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperrors.Newf(apperrors.CodeConcurrentModification,
				"season %s was modified concurrently", id)
		}
		return nil, err
	}

	log.Info().
		Str("season_id", id.String()).
		Str("reason", reason).
		Int("matches_cancelled", cancelled).
		Msg("cancelled season")
	return a.repo.GetSeason(ctx, id)
}

// CancelTeamMatches cancels a withdrawn team's scheduled matches. The
// registry calls this after a withdrawal from a season with generated
// fixtures.
func (a *App) CancelTeamMatches(ctx context.Context, seasonID, teamID uuid.UUID) (int, error) {
	cancelled, err := a.repo.CancelTeamMatches(ctx, seasonID, teamID, a.clock.Now().UTC())
	if err != nil {
		return 0, err
	}
	log.Info().
		Str("season_id", seasonID.String()).
		Str("team_id", teamID.String()).
		Int("matches_cancelled", cancelled).
		Msg("cancelled matches for withdrawn team")
	return cancelled, nil
}

// ResetStaleGeneration is the operator escape hatch for a season stuck in
// generating, usually after a crash mid-pipeline. It refuses to touch a
// generation younger than the stale interval.
func (a *App) ResetStaleGeneration(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, err
	}
	if season.FixturesStatus != models.FixturesStatusGenerating {
		return nil, apperrors.Newf(apperrors.CodeInvalidStateTransition,
			"season is not generating, fixtures status is %s", season.FixturesStatus)
	}
	if a.clock.Now().UTC().Sub(season.UpdatedAt) < a.staleAfter {
		return nil, apperrors.Newf(apperrors.CodeGenerationInProgress,
			"generation started less than %s ago and may still be running", a.staleAfter)
	}

	if _, err := a.repo.ResetFixtures(ctx, season); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, apperrors.Newf(apperrors.CodeConcurrentModification,
				"season %s was modified concurrently", id)
		}
		return nil, err
	}

	log.Warn().
		Str("season_id", id.String()).
		Time("generating_since", season.UpdatedAt).
		Msg("reset stale fixture generation")
	return a.repo.GetSeason(ctx, id)
}

// runGeneration is the post-claim half of the pipeline. Any failure is
// recorded on the season so the claim never leaks: the fixtures either end
// completed or in error, never stuck generating.
func (a *App) runGeneration(ctx context.Context, id uuid.UUID, eventType string) (*models.Season, []models.Match, error) {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	teams, err := a.teams.ListRegisteredTeams(ctx, id)
	if err != nil {
		return nil, nil, a.failGeneration(ctx, id, apperrors.Wrap(apperrors.CodeInternal, "list registered teams", err))
	}
	if len(teams) < season.Config.MinTeams {
		return nil, nil, a.failGeneration(ctx, id, apperrors.Newf(apperrors.CodeInsufficientTeams,
			"season needs at least %d teams, has %d", season.Config.MinTeams, len(teams)))
	}
	if len(teams) > season.Config.MaxTeams {
		return nil, nil, a.failGeneration(ctx, id, apperrors.Newf(apperrors.CodeTooManyTeams,
			"season allows at most %d teams, has %d", season.Config.MaxTeams, len(teams)))
	}

	pairings, err := fixtures.Generate(teamIDs(teams), season.Config.RoundsPerPairing)
	if err != nil {
		return nil, nil, a.failGeneration(ctx, id, err)
	}
	planned, err := fixtures.Schedule(pairings, scheduleWindow(season), homeVenues(teams), season.Config.DefaultVenue)
	if err != nil {
		return nil, nil, a.failGeneration(ctx, id, err)
	}

	now := a.clock.Now().UTC()
	matches := make([]models.Match, len(planned))
	for i, p := range planned {
		matches[i] = models.Match{
			ID:          uuid.New(),
			SeasonID:    id,
			HomeTeamID:  p.HomeTeamID,
			AwayTeamID:  p.AwayTeamID,
			RoundNumber: p.RoundNumber,
			MatchDate:   p.MatchDate,
			Status:      models.MatchStatusScheduled,
			Venue:       p.Venue,
		}
	}

	season.RegisteredTeamsCount = len(teams)
	if err := a.repo.CompleteGeneration(ctx, season, matches, now, eventType); err != nil {
		return nil, nil, a.failGeneration(ctx, id, apperrors.Wrap(apperrors.CodeInternal, "persist fixtures", err))
	}

	log.Info().
		Str("season_id", id.String()).
		Int("teams", len(teams)).
		Int("matches", len(matches)).
		Int("rounds", fixtures.RoundCount(pairings)).
		Msg("generated season fixtures")

	updated, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, matches, nil
}

// failGeneration records the failure on the season and returns the original
// error for the caller.
func (a *App) failGeneration(ctx context.Context, id uuid.UUID, cause error) error {
	code := apperrors.CodeOf(cause)
	if err := a.repo.FailGeneration(ctx, id, code, cause.Error(), a.clock.Now().UTC()); err != nil {
		log.Error().Err(err).
			Str("season_id", id.String()).
			Msg("failed to record fixture generation failure")
	}
	log.Warn().
		Str("season_id", id.String()).
		Str("code", string(code)).
		Err(cause).
		Msg("fixture generation failed")
	return cause
}

// classifyClaimFailure turns a lost compare-and-swap into the right error:
// GENERATION_IN_PROGRESS when another caller holds the claim, otherwise
// CONCURRENT_MODIFICATION.
func (a *App) classifyClaimFailure(ctx context.Context, id uuid.UUID) error {
	season, err := a.repo.GetSeason(ctx, id)
	if err != nil {
		return err
	}
	if season.FixturesStatus == models.FixturesStatusGenerating {
		return apperrors.Newf(apperrors.CodeGenerationInProgress,
			"fixture generation is already running for season %s", id)
	}
	return apperrors.Newf(apperrors.CodeConcurrentModification,
		"season %s was modified concurrently", id)
}

func scheduleWindow(season *models.Season) fixtures.ScheduleWindow {
	return fixtures.ScheduleWindow{
		StartDate:          season.Config.StartDate,
		EndDate:            season.Config.EndDate,
		MatchFrequencyDays: season.Config.MatchFrequencyDays,
		PreferredMatchTime: season.Config.PreferredMatchTime,
	}
}

func teamIDs(teams []models.SeasonTeam) []uuid.UUID {
	ids := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		ids[i] = t.TeamID
	}
	return ids
}

func homeVenues(teams []models.SeasonTeam) map[uuid.UUID]string {
	venues := make(map[uuid.UUID]string, len(teams))
	for _, t := range teams {
		if t.HomeVenue != "" {
			venues[t.TeamID] = t.HomeVenue
		}
	}
	return venues
}

// validateConfig rejects a season configuration that could never produce a
// valid schedule. Everything here is checked at creation so later pipeline
// stages can trust the config.
func validateConfig(cfg models.SeasonConfig) error {
	if cfg.LeagueID == uuid.Nil {
		return apperrors.New(apperrors.CodeInvalidConfig, "league id is required")
	}
	if cfg.Name == "" {
		return apperrors.New(apperrors.CodeInvalidConfig, "season name is required")
	}
	if cfg.SeasonYear < 2000 || cfg.SeasonYear > 2100 {
		return apperrors.Newf(apperrors.CodeInvalidConfig, "season year %d is out of range", cfg.SeasonYear)
	}
	switch cfg.TournamentFormat {
	case models.TournamentFormatLeague, models.TournamentFormatKnockout, models.TournamentFormatHybrid:
	default:
		return apperrors.Newf(apperrors.CodeInvalidConfig, "unknown tournament format %q", cfg.TournamentFormat)
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		return apperrors.New(apperrors.CodeInvalidConfig, "start date must be before end date")
	}
	if cfg.RegistrationDeadline != nil && cfg.RegistrationDeadline.After(cfg.StartDate) {
		return apperrors.New(apperrors.CodeInvalidConfig, "registration deadline must not be after the start date")
	}
	if cfg.MatchFrequencyDays < 1 {
		return apperrors.Newf(apperrors.CodeInvalidConfig, "match frequency must be at least 1 day, got %d", cfg.MatchFrequencyDays)
	}
	if _, err := time.Parse("15:04:05", cfg.PreferredMatchTime); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidConfig, "preferred match time must be HH:MM:SS", err)
	}
	if cfg.MinTeams < 2 {
		return apperrors.Newf(apperrors.CodeInvalidConfig, "minimum teams must be at least 2, got %d", cfg.MinTeams)
	}
	if cfg.MaxTeams < cfg.MinTeams {
		return apperrors.Newf(apperrors.CodeInvalidConfig, "maximum teams %d is below minimum %d", cfg.MaxTeams, cfg.MinTeams)
	}
	if cfg.RoundsPerPairing != 1 && cfg.RoundsPerPairing != 2 {
		return apperrors.Newf(apperrors.CodeInvalidConfig, "rounds per pairing must be 1 or 2, got %d", cfg.RoundsPerPairing)
	}
	if cfg.PointsForWin < 0 || cfg.PointsForDraw < 0 || cfg.PointsForLoss < 0 {
		return apperrors.New(apperrors.CodeInvalidConfig, "points values must not be negative")
	}
	if cfg.PointsForWin <= cfg.PointsForDraw {
		return apperrors.New(apperrors.CodeInvalidConfig, "points for a win must exceed points for a draw")
	}
	return nil
}
