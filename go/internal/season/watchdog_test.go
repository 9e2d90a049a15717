package season

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gansovic/matchday/go/internal/models"
)

func strandedSeason(t *testing.T, repo *fakeSeasonRepo, clock clockwork.Clock) *models.Season {
	t.Helper()
	app := NewApp(repo, &fakeLister{}, clock, 10*time.Minute)
	season, err := app.CreateSeason(context.Background(), validSeasonConfig())
	require.NoError(t, err)
	openRegistration(t, app, season.ID)

	current, err := app.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	require.NoError(t, repo.BeginGeneration(context.Background(), season.ID, current.Version))

	repo.mu.Lock()
	repo.season.UpdatedAt = clock.Now().UTC()
	repo.mu.Unlock()
	return season
}

func TestWatchdogReportsStalledOnce(t *testing.T) {
	repo := &fakeSeasonRepo{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	strandedSeason(t, repo, clock)

	wd := NewWatchdog(repo, clock, WatchdogConfig{
		SweepInterval: time.Minute,
		StaleAfter:    10 * time.Minute,
	})

	// still within the stale interval, nothing to report
	require.NoError(t, wd.Sweep(context.Background()))
	assert.Zero(t, repo.stalled)

	clock.Advance(11 * time.Minute)
	require.NoError(t, wd.Sweep(context.Background()))
	assert.Equal(t, 1, repo.stalled)

	// same stuck version is not re-announced
	clock.Advance(time.Minute)
	require.NoError(t, wd.Sweep(context.Background()))
	assert.Equal(t, 1, repo.stalled)
}

func TestWatchdogForgetsRecoveredSeasons(t *testing.T) {
	repo := &fakeSeasonRepo{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	season := strandedSeason(t, repo, clock)

	wd := NewWatchdog(repo, clock, WatchdogConfig{
		SweepInterval: time.Minute,
		StaleAfter:    10 * time.Minute,
	})

	clock.Advance(11 * time.Minute)
	require.NoError(t, wd.Sweep(context.Background()))
	require.Equal(t, 1, repo.stalled)

	// operator resets, then generation strands again at a new version
	app := NewApp(repo, &fakeLister{}, clock, 10*time.Minute)
	_, err := app.ResetStaleGeneration(context.Background(), season.ID)
	require.NoError(t, err)
	require.NoError(t, wd.Sweep(context.Background()))

	current, err := repo.GetSeason(context.Background(), season.ID)
	require.NoError(t, err)
	require.NoError(t, repo.BeginGeneration(context.Background(), season.ID, current.Version))
	repo.mu.Lock()
	repo.season.UpdatedAt = clock.Now().UTC()
	repo.mu.Unlock()

	clock.Advance(11 * time.Minute)
	require.NoError(t, wd.Sweep(context.Background()))
	assert.Equal(t, 2, repo.stalled)
}

func TestWatchdogStartStop(t *testing.T) {
	repo := &fakeSeasonRepo{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	wd := NewWatchdog(repo, clock, DefaultWatchdogConfig())

	require.NoError(t, wd.Start(context.Background()))
	assert.Error(t, wd.Start(context.Background()))
	wd.Stop()
	// stopping twice is a no-op
	wd.Stop()
}
