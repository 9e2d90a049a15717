package season

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gansovic/matchday/go/internal/apperrors"
	"github.com/Gansovic/matchday/go/internal/models"
)

// fakeSeasonRepo mimics the repository's optimistic concurrency semantics:
// version-checked writes fail with ErrVersionConflict exactly like the SQL
// layer's zero-rows-affected paths.
type fakeSeasonRepo struct {
	mu      sync.Mutex
	season  *models.Season
	matches []models.Match
	events  []string
	stalled int
}

func (f *fakeSeasonRepo) CreateSeason(ctx context.Context, id uuid.UUID, cfg models.SeasonConfig) (*models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	f.season = &models.Season{
		ID:             id,
		Config:         cfg,
		Status:         models.SeasonStatusDraft,
		FixturesStatus: models.FixturesStatusPending,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.events = append(f.events, "season.created")
	copied := *f.season
	return &copied, nil
}

func (f *fakeSeasonRepo) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season == nil || f.season.ID != id {
		return nil, apperrors.Newf(apperrors.CodeSeasonNotFound, "season %s not found", id)
	}
	copied := *f.season
	return &copied, nil
}

func (f *fakeSeasonRepo) GetSeasonsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season == nil || f.season.Config.LeagueID != leagueID {
		return nil, nil
	}
	return []models.Season{*f.season}, nil
}

func (f *fakeSeasonRepo) OpenRegistration(ctx context.Context, season *models.Season) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season.Version != season.Version {
		return ErrVersionConflict
	}
	f.season.Status = models.SeasonStatusRegistration
	f.season.Version++
	f.events = append(f.events, "season.registration.opened")
	return nil
}

func (f *fakeSeasonRepo) ActivateSeason(ctx context.Context, season *models.Season, activatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season.Version != season.Version {
		return ErrVersionConflict
	}
	f.season.Status = models.SeasonStatusActive
	f.season.Version++
	f.events = append(f.events, "season.activated")
	return nil
}

func (f *fakeSeasonRepo) BeginGeneration(ctx context.Context, seasonID uuid.UUID, expectedVersion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season.Version != expectedVersion ||
		f.season.Status != models.SeasonStatusRegistration ||
		(f.season.FixturesStatus != models.FixturesStatusPending && f.season.FixturesStatus != models.FixturesStatusError) {
		return ErrVersionConflict
	}
	f.season.FixturesStatus = models.FixturesStatusGenerating
	f.season.FixturesError = ""
	f.season.Version++
	return nil
}

func (f *fakeSeasonRepo) CompleteGeneration(ctx context.Context, season *models.Season, matches []models.Match, generatedAt time.Time, eventType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season.FixturesStatus != models.FixturesStatusGenerating {
		return ErrVersionConflict
	}
	f.matches = append(f.matches, matches...)
	f.season.FixturesStatus = models.FixturesStatusCompleted
	f.season.FixturesGeneratedAt = &generatedAt
	f.season.TotalMatchesPlanned = len(matches)
	f.season.RegisteredTeamsCount = season.RegisteredTeamsCount
	f.season.Version++
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeSeasonRepo) FailGeneration(ctx context.Context, seasonID uuid.UUID, code apperrors.Code, reason string, failedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.season.FixturesStatus = models.FixturesStatusError
	f.season.FixturesError = reason
	f.season.Version++
	f.events = append(f.events, "season.generation.failed")
	return nil
}

func (f *fakeSeasonRepo) ResetFixtures(ctx context.Context, season *models.Season) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season.Version != season.Version || f.season.Status != models.SeasonStatusRegistration {
		return 0, ErrVersionConflict
	}
	deleted := len(f.matches)
	f.matches = nil
	f.season.FixturesStatus = models.FixturesStatusPending
	f.season.FixturesError = ""
	f.season.FixturesGeneratedAt = nil
	f.season.TotalMatchesPlanned = 0
	f.season.Version++
	return deleted, nil
}

func (f *fakeSeasonRepo) CancelSeason(ctx context.Context, season *models.Season, reason string, cancelledAt time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season.IsTerminal() {
		return 0, ErrVersionConflict
	}
	f.season.Status = models.SeasonStatusCancelled
	f.season.Version++
	cancelled := 0
	for i := range f.matches {
		if f.matches[i].Status == models.MatchStatusScheduled || f.matches[i].Status == models.MatchStatusInProgress {
			f.matches[i].Status = models.MatchStatusCancelled
			cancelled++
		}
	}
	f.events = append(f.events, "season.cancelled")
	return cancelled, nil
}

func (f *fakeSeasonRepo) CancelTeamMatches(ctx context.Context, seasonID, teamID uuid.UUID, cancelledAt time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cancelled := 0
	for i := range f.matches {
		if f.matches[i].Status == models.MatchStatusScheduled && f.matches[i].Involves(teamID) {
			f.matches[i].Status = models.MatchStatusCancelled
			cancelled++
		}
	}
	f.events = append(f.events, "season.matches.cancelled")
	return cancelled, nil
}

func (f *fakeSeasonRepo) ListSeasonMatches(ctx context.Context, seasonID uuid.UUID) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Match, len(f.matches))
	copy(out, f.matches)
	return out, nil
}

func (f *fakeSeasonRepo) CountSeasonMatches(ctx context.Context, seasonID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matches), nil
}

func (f *fakeSeasonRepo) ListStaleGenerating(ctx context.Context, cutoff time.Time) ([]models.Season, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.season != nil && f.season.FixturesStatus == models.FixturesStatusGenerating && f.season.UpdatedAt.Before(cutoff) {
		return []models.Season{*f.season}, nil
	}
	return nil, nil
}

func (f *fakeSeasonRepo) RecordStalled(ctx context.Context, season *models.Season, detectedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stalled++
	f.events = append(f.events, "season.generation.stalled")
	return nil
}

func (f *fakeSeasonRepo) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

type fakeLister struct {
	teams []models.SeasonTeam
}

func (f *fakeLister) ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	return f.teams, nil
}

func validSeasonConfig() models.SeasonConfig {
	return models.SeasonConfig{
		LeagueID:                uuid.New(),
		Name:                    "Sunday League 2026/27",
		SeasonYear:              2026,
		TournamentFormat:        models.TournamentFormatLeague,
		StartDate:               time.Date(2026, time.September, 6, 0, 0, 0, 0, time.UTC),
		EndDate:                 time.Date(2027, time.May, 30, 0, 0, 0, 0, time.UTC),
		MatchFrequencyDays:      7,
		PreferredMatchTime:      "15:00:00",
		MinTeams:                4,
		MaxTeams:                12,
		RoundsPerPairing:        2,
		PointsForWin:            3,
		PointsForDraw:           1,
		PointsForLoss:           0,
		AllowDraws:              true,
		HomeAwayBalanceRequired: true,
		DefaultVenue:            "Municipal Ground",
	}
}

func registeredTeams(seasonID uuid.UUID, n int) []models.SeasonTeam {
	teams := make([]models.SeasonTeam, n)
	for i := range teams {
		teams[i] = models.SeasonTeam{
			ID:       uuid.New(),
			SeasonID: seasonID,
			TeamID:   uuid.New(),
			Status:   models.SeasonTeamStatusRegistered,
		}
	}
	return teams
}

func newTestApp(teams int) (*App, *fakeSeasonRepo, *fakeLister, *models.Season) {
	repo := &fakeSeasonRepo{}
	lister := &fakeLister{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, lister, clock, 10*time.Minute)

	season, err := app.CreateSeason(context.Background(), validSeasonConfig())
	if err != nil {
		panic(err)
	}
	lister.teams = registeredTeams(season.ID, teams)
	return app, repo, lister, season
}

func openRegistration(t *testing.T, app *App, id uuid.UUID) *models.Season {
	t.Helper()
	season, err := app.OpenRegistration(context.Background(), id)
	require.NoError(t, err)
	return season
}

func TestCreateSeasonInvalidConfig(t *testing.T) {
	app, _, _, _ := newTestApp(0)

	tests := []struct {
		name   string
		mutate func(*models.SeasonConfig)
	}{
		{"missing name", func(c *models.SeasonConfig) { c.Name = "" }},
		{"missing league", func(c *models.SeasonConfig) { c.LeagueID = uuid.Nil }},
		{"bad format", func(c *models.SeasonConfig) { c.TournamentFormat = "swiss" }},
		{"end before start", func(c *models.SeasonConfig) { c.EndDate = c.StartDate.AddDate(0, 0, -1) }},
		{"deadline after start", func(c *models.SeasonConfig) {
			d := c.StartDate.AddDate(0, 0, 1)
			c.RegistrationDeadline = &d
		}},
		{"zero frequency", func(c *models.SeasonConfig) { c.MatchFrequencyDays = 0 }},
		{"bad time", func(c *models.SeasonConfig) { c.PreferredMatchTime = "3pm" }},
		{"min below two", func(c *models.SeasonConfig) { c.MinTeams = 1 }},
		{"max below min", func(c *models.SeasonConfig) { c.MaxTeams = 3 }},
		{"bad rounds", func(c *models.SeasonConfig) { c.RoundsPerPairing = 3 }},
		{"draw worth a win", func(c *models.SeasonConfig) { c.PointsForDraw = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validSeasonConfig()
			tt.mutate(&cfg)
			_, err := app.CreateSeason(context.Background(), cfg)
			assert.Equal(t, apperrors.CodeInvalidConfig, apperrors.CodeOf(err))
		})
	}
}

func TestOpenRegistration(t *testing.T) {
	app, _, _, season := newTestApp(0)

	updated := openRegistration(t, app, season.ID)
	assert.Equal(t, models.SeasonStatusRegistration, updated.Status)
}

func TestOpenRegistrationInvalidTransition(t *testing.T) {
	app, _, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	_, err := app.OpenRegistration(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}

func TestGenerateFixtures(t *testing.T) {
	app, repo, lister, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	updated, matches, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	// double round-robin for 6 teams: 30 matches over 10 rounds
	assert.Len(t, matches, 30)
	assert.Equal(t, models.FixturesStatusCompleted, updated.FixturesStatus)
	assert.Equal(t, models.SeasonStatusRegistration, updated.Status)
	assert.Equal(t, 30, updated.TotalMatchesPlanned)
	assert.Equal(t, len(lister.teams), updated.RegisteredTeamsCount)
	assert.NotNil(t, updated.FixturesGeneratedAt)
	assert.Contains(t, repo.eventTypes(), "season.fixtures.generated")

	for _, m := range matches {
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.Equal(t, season.ID, m.SeasonID)
		assert.NotEmpty(t, m.Venue)
	}
}

func TestGenerateFixturesUnsupportedFormat(t *testing.T) {
	repo := &fakeSeasonRepo{}
	lister := &fakeLister{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, lister, clock, 10*time.Minute)

	cfg := validSeasonConfig()
	cfg.TournamentFormat = models.TournamentFormatKnockout
	season, err := app.CreateSeason(context.Background(), cfg)
	require.NoError(t, err)
	lister.teams = registeredTeams(season.ID, 6)
	openRegistration(t, app, season.ID)

	_, _, err = app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeUnsupportedFormat, apperrors.CodeOf(err))

	// format is rejected before the claim, so the fixtures state is untouched
	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixturesStatusPending, current.FixturesStatus)
}

func TestGenerateFixturesInsufficientTeams(t *testing.T) {
	app, _, _, season := newTestApp(2)
	openRegistration(t, app, season.ID)

	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInsufficientTeams, apperrors.CodeOf(err))

	// the failure is recorded on the season and registration stays open
	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonStatusRegistration, current.Status)
	assert.Equal(t, models.FixturesStatusError, current.FixturesStatus)
	assert.NotEmpty(t, current.FixturesError)
}

func TestGenerateFixturesTooManyTeams(t *testing.T) {
	// MaxTeams is 12; registrations can exceed it when two registrations
	// race past the capacity check, so generation re-validates the cap.
	app, _, _, season := newTestApp(13)
	openRegistration(t, app, season.ID)

	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeTooManyTeams, apperrors.CodeOf(err))

	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonStatusRegistration, current.Status)
	assert.Equal(t, models.FixturesStatusError, current.FixturesStatus)
	assert.NotEmpty(t, current.FixturesError)

	_, err = app.PreviewFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeTooManyTeams, apperrors.CodeOf(err))
}

func TestGenerateFixturesRetryAfterError(t *testing.T) {
	app, _, lister, season := newTestApp(2)
	openRegistration(t, app, season.ID)

	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.Error(t, err)

	// more teams register, the retry succeeds from the error state
	lister.teams = registeredTeams(season.ID, 6)
	updated, matches, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 30)
	assert.Equal(t, models.FixturesStatusCompleted, updated.FixturesStatus)
	assert.Empty(t, updated.FixturesError)
}

func TestGenerateFixturesScheduleTooLong(t *testing.T) {
	repo := &fakeSeasonRepo{}
	lister := &fakeLister{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, lister, clock, 10*time.Minute)

	cfg := validSeasonConfig()
	cfg.EndDate = cfg.StartDate.AddDate(0, 0, 14) // far too short for a double round-robin
	season, err := app.CreateSeason(context.Background(), cfg)
	require.NoError(t, err)
	lister.teams = registeredTeams(season.ID, 6)
	openRegistration(t, app, season.ID)

	_, _, err = app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeScheduleExceedsSeasonWindow, apperrors.CodeOf(err))

	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixturesStatusError, current.FixturesStatus)
}

func TestGenerateFixturesConcurrentCallers(t *testing.T) {
	app, _, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		code := apperrors.CodeOf(err)
		assert.Contains(t, []apperrors.Code{
			apperrors.CodeGenerationInProgress,
			apperrors.CodeConcurrentModification,
		}, code)
	}
	assert.Equal(t, 1, succeeded, "exactly one caller should win the claim")

	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixturesStatusCompleted, current.FixturesStatus)
	assert.Equal(t, 30, current.TotalMatchesPlanned)
}

func TestRegenerateFixtures(t *testing.T) {
	app, repo, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	_, first, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	updated, second, err := app.RegenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	assert.Equal(t, models.FixturesStatusCompleted, updated.FixturesStatus)
	assert.Contains(t, repo.eventTypes(), "season.fixtures.regenerated")

	// old matches discarded, same structure regenerated
	count, err := repo.CountSeasonMatches(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, len(second), count)

	pairs := func(matches []models.Match) map[[2]uuid.UUID]int {
		out := make(map[[2]uuid.UUID]int)
		for _, m := range matches {
			out[[2]uuid.UUID{m.HomeTeamID, m.AwayTeamID}]++
		}
		return out
	}
	assert.Equal(t, pairs(first), pairs(second))
}

func TestRegenerateFixturesRequiresExistingFixtures(t *testing.T) {
	app, _, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	_, _, err := app.RegenerateFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}

func TestRegenerateFixturesNotAfterActivation(t *testing.T) {
	app, _, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)
	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)
	_, err = app.ActivateSeason(context.Background(), season.ID)
	require.NoError(t, err)

	_, _, err = app.RegenerateFixtures(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}

func TestPreviewFixturesDoesNotPersist(t *testing.T) {
	app, repo, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	planned, err := app.PreviewFixtures(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Len(t, planned, 30)

	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixturesStatusPending, current.FixturesStatus)
	count, err := repo.CountSeasonMatches(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestActivateSeason(t *testing.T) {
	app, _, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)
	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	updated, err := app.ActivateSeason(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonStatusActive, updated.Status)
}

func TestActivateSeasonRequiresFixtures(t *testing.T) {
	app, _, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)

	_, err := app.ActivateSeason(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}

func TestActivateSeasonFromDraft(t *testing.T) {
	app, _, _, season := newTestApp(6)

	_, err := app.ActivateSeason(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}

func TestCancelSeasonCascade(t *testing.T) {
	app, repo, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)
	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	updated, err := app.CancelSeason(context.Background(), season.ID, "league folded")
	require.NoError(t, err)
	assert.Equal(t, models.SeasonStatusCancelled, updated.Status)

	matches, err := repo.ListSeasonMatches(context.Background(), season.ID)
	require.NoError(t, err)
	for _, m := range matches {
		assert.Equal(t, models.MatchStatusCancelled, m.Status)
	}
}

func TestCancelTeamMatches(t *testing.T) {
	app, repo, lister, season := newTestApp(6)
	openRegistration(t, app, season.ID)
	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	target := lister.teams[0].TeamID
	cancelled, err := app.CancelTeamMatches(context.Background(), season.ID, target)
	require.NoError(t, err)
	assert.Equal(t, 10, cancelled) // double round-robin: 2*(n-1) matches per team

	matches, err := repo.ListSeasonMatches(context.Background(), season.ID)
	require.NoError(t, err)
	for _, m := range matches {
		if m.Involves(target) {
			assert.Equal(t, models.MatchStatusCancelled, m.Status)
		} else {
			assert.Equal(t, models.MatchStatusScheduled, m.Status)
		}
	}
}

func TestCancelSeasonTerminal(t *testing.T) {
	app, _, _, season := newTestApp(6)
	_, err := app.CancelSeason(context.Background(), season.ID, "first")
	require.NoError(t, err)

	_, err = app.CancelSeason(context.Background(), season.ID, "second")
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}

func TestGetSeasonDetailsReconciliation(t *testing.T) {
	app, repo, _, season := newTestApp(6)
	openRegistration(t, app, season.ID)
	_, _, err := app.CloseRegistrationAndGenerateFixtures(context.Background(), season.ID)
	require.NoError(t, err)

	// simulate lost match rows
	repo.mu.Lock()
	repo.matches = repo.matches[:10]
	repo.mu.Unlock()

	details, err := app.GetSeasonDetails(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixturesStatusError, details.Season.FixturesStatus)
	assert.NotEmpty(t, details.Season.FixturesError)
}

func TestResetStaleGeneration(t *testing.T) {
	repo := &fakeSeasonRepo{}
	lister := &fakeLister{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, lister, clock, 10*time.Minute)

	season, err := app.CreateSeason(context.Background(), validSeasonConfig())
	require.NoError(t, err)
	lister.teams = registeredTeams(season.ID, 6)
	openRegistration(t, app, season.ID)

	// strand the season in generating
	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	require.NoError(t, repo.BeginGeneration(context.Background(), season.ID, current.Version))
	repo.mu.Lock()
	repo.season.UpdatedAt = clock.Now().UTC()
	repo.mu.Unlock()

	// too fresh to reset
	_, err = app.ResetStaleGeneration(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeGenerationInProgress, apperrors.CodeOf(err))

	clock.Advance(11 * time.Minute)
	updated, err := app.ResetStaleGeneration(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FixturesStatusPending, updated.FixturesStatus)
}

func TestResetStaleGenerationRequiresGenerating(t *testing.T) {
	app, _, _, season := newTestApp(6)

	_, err := app.ResetStaleGeneration(context.Background(), season.ID)
	assert.Equal(t, apperrors.CodeInvalidStateTransition, apperrors.CodeOf(err))
}
