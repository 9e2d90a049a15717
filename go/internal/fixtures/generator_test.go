package fixtures

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gansovic/matchday/go/internal/apperrors"
)

func makeTeams(n int) []uuid.UUID {
	teams := make([]uuid.UUID, n)
	for i := range teams {
		teams[i] = uuid.New()
	}
	return teams
}

type pairKey struct {
	a, b uuid.UUID
}

// unordered pair key
func keyOf(p Pairing) pairKey {
	if p.HomeTeamID.String() < p.AwayTeamID.String() {
		return pairKey{p.HomeTeamID, p.AwayTeamID}
	}
	return pairKey{p.AwayTeamID, p.HomeTeamID}
}

func TestGenerateSingleRoundRobin(t *testing.T) {
	for n := 2; n <= 12; n++ {
		t.Run(fmt.Sprintf("%d_teams", n), func(t *testing.T) {
			teams := makeTeams(n)
			pairings, err := Generate(teams, 1)
			require.NoError(t, err)

			require.Len(t, pairings, n*(n-1)/2)

			expectedRounds := n - 1
			if n%2 == 1 {
				expectedRounds = n
			}
			assert.Equal(t, expectedRounds, RoundCount(pairings))

			// every unordered pair appears exactly once
			seen := make(map[pairKey]int)
			for _, p := range pairings {
				require.NotEqual(t, p.HomeTeamID, p.AwayTeamID)
				seen[keyOf(p)]++
			}
			for pair, count := range seen {
				assert.Equal(t, 1, count, "pair %v scheduled %d times", pair, count)
			}
			assert.Len(t, seen, n*(n-1)/2)

			// no team plays twice in the same round
			perRound := make(map[int]map[uuid.UUID]bool)
			for _, p := range pairings {
				if perRound[p.Round] == nil {
					perRound[p.Round] = make(map[uuid.UUID]bool)
				}
				assert.False(t, perRound[p.Round][p.HomeTeamID], "team plays twice in round %d", p.Round)
				assert.False(t, perRound[p.Round][p.AwayTeamID], "team plays twice in round %d", p.Round)
				perRound[p.Round][p.HomeTeamID] = true
				perRound[p.Round][p.AwayTeamID] = true
			}

			// home/away counts differ by at most one per team
			home := make(map[uuid.UUID]int)
			away := make(map[uuid.UUID]int)
			for _, p := range pairings {
				home[p.HomeTeamID]++
				away[p.AwayTeamID]++
			}
			for _, team := range teams {
				assert.Equal(t, n-1, home[team]+away[team])
				diff := home[team] - away[team]
				assert.LessOrEqual(t, diff, 1, "team %s home/away imbalance", team)
				assert.GreaterOrEqual(t, diff, -1, "team %s home/away imbalance", team)
			}
		})
	}
}

func TestGenerateOddTeamCountByes(t *testing.T) {
	teams := makeTeams(5)
	pairings, err := Generate(teams, 1)
	require.NoError(t, err)

	// 5 rounds, 2 matches each, every team idle exactly once
	require.Equal(t, 5, RoundCount(pairings))
	byes := make(map[uuid.UUID]int)
	for round := 1; round <= 5; round++ {
		playing := make(map[uuid.UUID]bool)
		count := 0
		for _, p := range pairings {
			if p.Round == round {
				playing[p.HomeTeamID] = true
				playing[p.AwayTeamID] = true
				count++
			}
		}
		assert.Equal(t, 2, count, "round %d match count", round)
		for _, team := range teams {
			if !playing[team] {
				byes[team]++
			}
		}
	}
	for _, team := range teams {
		assert.Equal(t, 1, byes[team], "team %s bye count", team)
	}
}

func TestGenerateFourTeamRoundSets(t *testing.T) {
	teams := makeTeams(4)
	a, b, c, d := teams[0], teams[1], teams[2], teams[3]

	pairings, err := Generate(teams, 1)
	require.NoError(t, err)
	require.Len(t, pairings, 6)

	rounds := make(map[int]map[pairKey]bool)
	for _, p := range pairings {
		if rounds[p.Round] == nil {
			rounds[p.Round] = make(map[pairKey]bool)
		}
		rounds[p.Round][keyOf(p)] = true
	}

	unordered := func(x, y uuid.UUID) pairKey {
		return keyOf(Pairing{HomeTeamID: x, AwayTeamID: y})
	}
	assert.True(t, rounds[1][unordered(a, d)])
	assert.True(t, rounds[1][unordered(b, c)])
	assert.True(t, rounds[2][unordered(a, c)])
	assert.True(t, rounds[2][unordered(b, d)])
	assert.True(t, rounds[3][unordered(a, b)])
	assert.True(t, rounds[3][unordered(c, d)])
}

func TestGenerateDoubleRoundRobin(t *testing.T) {
	teams := makeTeams(6)
	pairings, err := Generate(teams, 2)
	require.NoError(t, err)

	require.Len(t, pairings, 2*6*5/2)
	assert.Equal(t, 10, RoundCount(pairings))

	// second pass mirrors the first with venues swapped and rounds offset
	half := len(pairings) / 2
	for i := 0; i < half; i++ {
		first, second := pairings[i], pairings[half+i]
		assert.Equal(t, first.Round+5, second.Round)
		assert.Equal(t, first.HomeTeamID, second.AwayTeamID)
		assert.Equal(t, first.AwayTeamID, second.HomeTeamID)
	}

	// double round-robin is exactly balanced
	home := make(map[uuid.UUID]int)
	for _, p := range pairings {
		home[p.HomeTeamID]++
	}
	for _, team := range teams {
		assert.Equal(t, 5, home[team])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	teams := makeTeams(8)
	first, err := Generate(teams, 2)
	require.NoError(t, err)
	second, err := Generate(teams, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateErrors(t *testing.T) {
	_, err := Generate(makeTeams(1), 1)
	assert.Equal(t, apperrors.CodeNotEnoughTeamsToSchedule, apperrors.CodeOf(err))

	_, err = Generate(nil, 1)
	assert.Equal(t, apperrors.CodeNotEnoughTeamsToSchedule, apperrors.CodeOf(err))

	_, err = Generate(makeTeams(4), 3)
	assert.Equal(t, apperrors.CodeInvalidConfig, apperrors.CodeOf(err))
}
