// Package fixtures contains the pure fixture pipeline: the round-robin
// pairing generator and the calendar scheduler. Neither touches storage,
// which keeps both independently unit-testable.
package fixtures

import (
	"github.com/google/uuid"

	"github.com/Gansovic/matchday/go/internal/apperrors"
)

// Pairing is one abstract fixture produced by the generator: a round index
// and the two teams, with venue roles already decided.
type Pairing struct {
	Round      int
	HomeTeamID uuid.UUID
	AwayTeamID uuid.UUID
}

// Generate computes a round-robin pairing schedule for the given teams using
// the circle method. The input order is significant: the same ordered team
// list always yields the same schedule.
//
// For an odd team count a synthetic bye occupies the fixed seat and each team
// sits out exactly one round. With roundsPerPairing=2 the single pass is
// repeated with venue roles swapped, renumbered as a second block of rounds.
//
// Home/away assignment follows the classical minimum-break pattern: the fixed
// seat alternates venue by round parity, and the mirrored pairs take venue
// from the mirror offset's parity. Over a single pass each team's home and
// away counts differ by at most 1; the swapped second pass makes a double
// round-robin exactly balanced.
func Generate(teamIDs []uuid.UUID, roundsPerPairing int) ([]Pairing, error) {
	if len(teamIDs) < 2 {
		return nil, apperrors.Newf(apperrors.CodeNotEnoughTeamsToSchedule,
			"need at least 2 teams to schedule, got %d", len(teamIDs))
	}
	if roundsPerPairing != 1 && roundsPerPairing != 2 {
		return nil, apperrors.Newf(apperrors.CodeInvalidConfig,
			"rounds per pairing must be 1 or 2, got %d", roundsPerPairing)
	}

	// Seats 0..n-2 rotate; seat n-1 is fixed. With an odd team count the
	// fixed seat holds the bye and its pairing is dropped each round.
	n := len(teamIDs)
	byeSeat := -1
	if n%2 == 1 {
		byeSeat = n
		n++
	}
	rotating := n - 1
	rounds := n - 1

	pairings := make([]Pairing, 0, rounds*n/2)
	emit := func(round, homeSeat, awaySeat int) {
		if homeSeat == byeSeat || awaySeat == byeSeat {
			return
		}
		pairings = append(pairings, Pairing{
			Round:      round,
			HomeTeamID: teamIDs[homeSeat],
			AwayTeamID: teamIDs[awaySeat],
		})
	}

	for r := 0; r < rounds; r++ {
		// Fixed seat meets the team whose rotating index equals the round.
		if r%2 == 0 {
			emit(r+1, n-1, r)
		} else {
			emit(r+1, r, n-1)
		}
		for k := 1; k <= n/2-1; k++ {
			i := (r + k) % rotating
			j := (r - k + rotating) % rotating
			if k%2 == 1 {
				emit(r+1, i, j)
			} else {
				emit(r+1, j, i)
			}
		}
	}

	if roundsPerPairing == 2 {
		firstPass := len(pairings)
		for idx := 0; idx < firstPass; idx++ {
			p := pairings[idx]
			pairings = append(pairings, Pairing{
				Round:      p.Round + rounds,
				HomeTeamID: p.AwayTeamID,
				AwayTeamID: p.HomeTeamID,
			})
		}
	}

	return pairings, nil
}

// RoundCount returns the number of distinct rounds in a pairing list.
func RoundCount(pairings []Pairing) int {
	max := 0
	for _, p := range pairings {
		if p.Round > max {
			max = p.Round
		}
	}
	return max
}
