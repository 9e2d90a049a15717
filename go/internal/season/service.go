package season

import (
	"context"

	"github.com/google/uuid"

	"github.com/Gansovic/matchday/go/internal/apperrors"
	"github.com/Gansovic/matchday/go/internal/fixtures"
	"github.com/Gansovic/matchday/go/internal/models"
)

// TeamRegistry defines what the service facade needs from the season team
// registry.
type TeamRegistry interface {
	RegisterTeam(ctx context.Context, seasonID, teamID uuid.UUID, homeVenue string) (*models.SeasonTeam, error)
	WithdrawTeam(ctx context.Context, seasonID, teamID uuid.UUID) error
	ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error)
	ListTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error)
}

// ErrorInfo is the machine-readable error half of a Result.
type ErrorInfo struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
}

// Result is the uniform envelope every service operation returns: either
// Data is set and Success is true, or Error is set. Callers branch on
// Error.Code, never on message text.
type Result[T any] struct {
	Success bool       `json:"success"`
	Data    *T         `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

func ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: &data}
}

func fail[T any](err error) Result[T] {
	return Result[T]{
		Success: false,
		Error: &ErrorInfo{
			Code:    apperrors.CodeOf(err),
			Message: apperrors.MessageOf(err),
		},
	}
}

// GenerationResult is the payload of a successful fixture generation.
type GenerationResult struct {
	Season  models.Season  `json:"season"`
	Matches []models.Match `json:"matches"`
}

// Service is the season engine's operation surface. It translates the app
// layers' error returns into Result envelopes; no business logic lives here.
type Service struct {
	seasons  *App
	registry TeamRegistry
}

// NewService creates a new season Service.
func NewService(seasons *App, registry TeamRegistry) *Service {
	return &Service{
		seasons:  seasons,
		registry: registry,
	}
}

// CreateSeason creates a new draft season from a validated configuration.
func (s *Service) CreateSeason(ctx context.Context, cfg models.SeasonConfig) Result[models.Season] {
	season, err := s.seasons.CreateSeason(ctx, cfg)
	if err != nil {
		return fail[models.Season](err)
	}
	return ok(*season)
}

// GetSeason returns a season by ID.
func (s *Service) GetSeason(ctx context.Context, id uuid.UUID) Result[models.Season] {
	season, err := s.seasons.GetSeason(ctx, id)
	if err != nil {
		return fail[models.Season](err)
	}
	return ok(*season)
}

// GetSeasonDetails returns a season with its teams and matches, after
// reconciling the persisted match count against the planned total.
func (s *Service) GetSeasonDetails(ctx context.Context, id uuid.UUID) Result[SeasonDetails] {
	details, err := s.seasons.GetSeasonDetails(ctx, id)
	if err != nil {
		return fail[SeasonDetails](err)
	}
	return ok(*details)
}

// GetSeasonsByLeague returns a league's seasons, newest first.
func (s *Service) GetSeasonsByLeague(ctx context.Context, leagueID uuid.UUID) Result[[]models.Season] {
	seasons, err := s.seasons.GetSeasonsByLeague(ctx, leagueID)
	if err != nil {
		return fail[[]models.Season](err)
	}
	return ok(seasons)
}

// GetSeasonMatches returns a season's matches in round order.
func (s *Service) GetSeasonMatches(ctx context.Context, id uuid.UUID) Result[[]models.Match] {
	matches, err := s.seasons.GetSeasonMatches(ctx, id)
	if err != nil {
		return fail[[]models.Match](err)
	}
	return ok(matches)
}

// OpenRegistration moves a draft season into registration.
func (s *Service) OpenRegistration(ctx context.Context, id uuid.UUID) Result[models.Season] {
	season, err := s.seasons.OpenRegistration(ctx, id)
	if err != nil {
		return fail[models.Season](err)
	}
	return ok(*season)
}

// CloseRegistrationAndGenerateFixtures runs the fixture generation pipeline.
func (s *Service) CloseRegistrationAndGenerateFixtures(ctx context.Context, id uuid.UUID) Result[GenerationResult] {
	season, matches, err := s.seasons.CloseRegistrationAndGenerateFixtures(ctx, id)
	if err != nil {
		return fail[GenerationResult](err)
	}
	return ok(GenerationResult{Season: *season, Matches: matches})
}

// RegenerateFixtures discards generated fixtures and runs the pipeline again.
func (s *Service) RegenerateFixtures(ctx context.Context, id uuid.UUID) Result[GenerationResult] {
	season, matches, err := s.seasons.RegenerateFixtures(ctx, id)
	if err != nil {
		return fail[GenerationResult](err)
	}
	return ok(GenerationResult{Season: *season, Matches: matches})
}

// PreviewFixtures generates and schedules fixtures without persisting them.
func (s *Service) PreviewFixtures(ctx context.Context, id uuid.UUID) Result[[]fixtures.PlannedMatch] {
	planned, err := s.seasons.PreviewFixtures(ctx, id)
	if err != nil {
		return fail[[]fixtures.PlannedMatch](err)
	}
	return ok(planned)
}

// ActivateSeason moves a season with completed fixtures into active.
func (s *Service) ActivateSeason(ctx context.Context, id uuid.UUID) Result[models.Season] {
	season, err := s.seasons.ActivateSeason(ctx, id)
	if err != nil {
		return fail[models.Season](err)
	}
	return ok(*season)
}

// CancelSeason cancels a season and its unplayed matches.
func (s *Service) CancelSeason(ctx context.Context, id uuid.UUID, reason string) Result[models.Season] {
	season, err := s.seasons.CancelSeason(ctx, id, reason)
	if err != nil {
		return fail[models.Season](err)
	}
	return ok(*season)
}

// ResetStaleGeneration resets a season stuck in generating past the stale
// interval.
func (s *Service) ResetStaleGeneration(ctx context.Context, id uuid.UUID) Result[models.Season] {
	season, err := s.seasons.ResetStaleGeneration(ctx, id)
	if err != nil {
		return fail[models.Season](err)
	}
	return ok(*season)
}

// RegisterTeam registers a team for a season in registration.
func (s *Service) RegisterTeam(ctx context.Context, seasonID, teamID uuid.UUID, homeVenue string) Result[models.SeasonTeam] {
	team, err := s.registry.RegisterTeam(ctx, seasonID, teamID, homeVenue)
	if err != nil {
		return fail[models.SeasonTeam](err)
	}
	return ok(*team)
}

// WithdrawTeam withdraws a team from a season, cancelling its scheduled
// matches when fixtures exist.
func (s *Service) WithdrawTeam(ctx context.Context, seasonID, teamID uuid.UUID) Result[struct{}] {
	if err := s.registry.WithdrawTeam(ctx, seasonID, teamID); err != nil {
		return fail[struct{}](err)
	}
	return ok(struct{}{})
}

// ListRegisteredTeams returns a season's active registrations in canonical
// registration order.
func (s *Service) ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) Result[[]models.SeasonTeam] {
	teams, err := s.registry.ListRegisteredTeams(ctx, seasonID)
	if err != nil {
		return fail[[]models.SeasonTeam](err)
	}
	return ok(teams)
}

// ListTeams returns all of a season's registrations, withdrawn included.
func (s *Service) ListTeams(ctx context.Context, seasonID uuid.UUID) Result[[]models.SeasonTeam] {
	teams, err := s.registry.ListTeams(ctx, seasonID)
	if err != nil {
		return fail[[]models.SeasonTeam](err)
	}
	return ok(teams)
}
