package season

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gansovic/matchday/go/internal/apperrors"
	"github.com/Gansovic/matchday/go/internal/models"
)

type fakeRegistry struct {
	teams []models.SeasonTeam
}

func (f *fakeRegistry) RegisterTeam(ctx context.Context, seasonID, teamID uuid.UUID, homeVenue string) (*models.SeasonTeam, error) {
	team := models.SeasonTeam{
		ID:        uuid.New(),
		SeasonID:  seasonID,
		TeamID:    teamID,
		Status:    models.SeasonTeamStatusRegistered,
		HomeVenue: homeVenue,
	}
	f.teams = append(f.teams, team)
	return &team, nil
}

func (f *fakeRegistry) WithdrawTeam(ctx context.Context, seasonID, teamID uuid.UUID) error {
	return apperrors.Newf(apperrors.CodeTeamNotFound, "team %s has no active registration", teamID)
}

func (f *fakeRegistry) ListRegisteredTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	return f.teams, nil
}

func (f *fakeRegistry) ListTeams(ctx context.Context, seasonID uuid.UUID) ([]models.SeasonTeam, error) {
	return f.teams, nil
}

func newTestService() (*Service, *fakeSeasonRepo) {
	repo := &fakeSeasonRepo{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, &fakeLister{}, clock, 10*time.Minute)
	return NewService(app, &fakeRegistry{}), repo
}

func TestServiceSuccessEnvelope(t *testing.T) {
	svc, _ := newTestService()

	result := svc.CreateSeason(context.Background(), validSeasonConfig())
	require.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Nil(t, result.Error)
	assert.Equal(t, models.SeasonStatusDraft, result.Data.Status)
}

func TestServiceErrorEnvelope(t *testing.T) {
	svc, _ := newTestService()

	cfg := validSeasonConfig()
	cfg.MinTeams = 1
	result := svc.CreateSeason(context.Background(), cfg)
	require.False(t, result.Success)
	assert.Nil(t, result.Data)
	require.NotNil(t, result.Error)
	assert.Equal(t, apperrors.CodeInvalidConfig, result.Error.Code)
	assert.NotEmpty(t, result.Error.Message)
}

func TestServiceNotFoundEnvelope(t *testing.T) {
	svc, _ := newTestService()

	result := svc.GetSeason(context.Background(), uuid.New())
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, apperrors.CodeSeasonNotFound, result.Error.Code)
}

func TestServiceRegistryPassthrough(t *testing.T) {
	svc, _ := newTestService()

	seasonResult := svc.CreateSeason(context.Background(), validSeasonConfig())
	require.True(t, seasonResult.Success)

	registered := svc.RegisterTeam(context.Background(), seasonResult.Data.ID, uuid.New(), "Riverside Park")
	require.True(t, registered.Success)
	assert.Equal(t, "Riverside Park", registered.Data.HomeVenue)

	withdraw := svc.WithdrawTeam(context.Background(), seasonResult.Data.ID, uuid.New())
	require.False(t, withdraw.Success)
	assert.Equal(t, apperrors.CodeTeamNotFound, withdraw.Error.Code)
}
