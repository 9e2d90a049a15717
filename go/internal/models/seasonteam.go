package models

import (
	"time"

	"github.com/google/uuid"
)

// SeasonTeamStatus represents a team's registration status within a season
type SeasonTeamStatus string

const (
	SeasonTeamStatusRegistered SeasonTeamStatus = "registered"
	SeasonTeamStatusConfirmed  SeasonTeamStatus = "confirmed"
	SeasonTeamStatusWithdrawn  SeasonTeamStatus = "withdrawn"
)

// SeasonTeam represents the membership of one team in one season.
type SeasonTeam struct {
	ID               uuid.UUID        `json:"id"`
	SeasonID         uuid.UUID        `json:"season_id"`
	TeamID           uuid.UUID        `json:"team_id"`
	RegistrationDate time.Time        `json:"registration_date"`
	Status           SeasonTeamStatus `json:"status"`
	HomeVenue        string           `json:"home_venue,omitempty"`
}

// IsActive reports whether the registration still counts toward the season's
// registered-team count.
func (st *SeasonTeam) IsActive() bool {
	return st.Status != SeasonTeamStatusWithdrawn
}
