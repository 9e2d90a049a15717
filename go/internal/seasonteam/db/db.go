// Package db holds the hand-maintained query layer for the season_teams
// table, shaped like generated sqlc output.
package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// SeasonTeam mirrors one row of the season_teams table.
type SeasonTeam struct {
	ID               uuid.UUID
	SeasonID         uuid.UUID
	TeamID           uuid.UUID
	RegistrationDate time.Time
	Status           string
	HomeVenue        sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
