package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/Gansovic/matchday/go/internal/apperrors"
)

// ScheduleWindow describes the calendar constraints a season imposes on its
// fixture list.
type ScheduleWindow struct {
	StartDate          time.Time
	EndDate            time.Time
	MatchFrequencyDays int
	PreferredMatchTime string // HH:MM:SS
}

// PlannedMatch is a pairing bound to a concrete calendar date, ready to be
// persisted as a match row.
type PlannedMatch struct {
	HomeTeamID  uuid.UUID
	AwayTeamID  uuid.UUID
	RoundNumber int
	MatchDate   time.Time
	Venue       string
}

// Schedule assigns calendar dates to generated pairings. Rounds run
// sequentially from the window's start date, advancing MatchFrequencyDays
// between consecutive rounds, with the preferred time of day stamped onto
// every date. All matches of a round share the same date; venue conflicts are
// not this layer's concern.
//
// The full span is validated before anything is returned: if the last round
// would land after the window's end date the whole schedule is rejected, so
// callers never persist a partially fitting fixture list.
func Schedule(pairings []Pairing, window ScheduleWindow, homeVenues map[uuid.UUID]string, defaultVenue string) ([]PlannedMatch, error) {
	if len(pairings) == 0 {
		return nil, nil
	}
	if window.MatchFrequencyDays < 1 {
		return nil, apperrors.Newf(apperrors.CodeInvalidConfig,
			"match frequency must be at least 1 day, got %d", window.MatchFrequencyDays)
	}

	matchTime, err := time.Parse("15:04:05", window.PreferredMatchTime)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidConfig,
			"preferred match time must be HH:MM:SS", err)
	}

	rounds := RoundCount(pairings)
	lastDate := roundDate(window, matchTime, rounds)
	if lastDate.After(endOfDay(window.EndDate)) {
		return nil, apperrors.Newf(apperrors.CodeScheduleExceedsSeasonWindow,
			"%d rounds every %d days need until %s but the season ends %s",
			rounds, window.MatchFrequencyDays,
			lastDate.Format("2006-01-02"), window.EndDate.Format("2006-01-02"))
	}

	planned := make([]PlannedMatch, 0, len(pairings))
	for _, p := range pairings {
		venue := homeVenues[p.HomeTeamID]
		if venue == "" {
			venue = defaultVenue
		}
		planned = append(planned, PlannedMatch{
			HomeTeamID:  p.HomeTeamID,
			AwayTeamID:  p.AwayTeamID,
			RoundNumber: p.Round,
			MatchDate:   roundDate(window, matchTime, p.Round),
			Venue:       venue,
		})
	}
	return planned, nil
}

// roundDate computes the date of a 1-based round: start date plus the round
// offset, at the preferred time of day.
func roundDate(window ScheduleWindow, matchTime time.Time, round int) time.Time {
	day := window.StartDate.AddDate(0, 0, (round-1)*window.MatchFrequencyDays)
	return time.Date(day.Year(), day.Month(), day.Day(),
		matchTime.Hour(), matchTime.Minute(), matchTime.Second(), 0, day.Location())
}

func endOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 23, 59, 59, 0, value.Location())
}
