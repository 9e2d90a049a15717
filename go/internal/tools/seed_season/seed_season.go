package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gansovic/matchday/go/internal/dbconfig"
)

// DemoTeam mirrors the JSON snapshot of seed teams
type DemoTeam struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HomeVenue string `json:"home_venue"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS seasons (
		id UUID PRIMARY KEY,
		league_id UUID NOT NULL,
		name TEXT NOT NULL,
		season_year INT NOT NULL,
		tournament_format TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		registration_deadline TIMESTAMPTZ,
		match_frequency_days INT NOT NULL,
		preferred_match_time TEXT NOT NULL,
		min_teams INT NOT NULL,
		max_teams INT NOT NULL,
		rounds_per_pairing INT NOT NULL,
		points_for_win INT NOT NULL,
		points_for_draw INT NOT NULL,
		points_for_loss INT NOT NULL,
		allow_draws BOOLEAN NOT NULL,
		home_away_balance_required BOOLEAN NOT NULL,
		default_venue TEXT,
		status TEXT NOT NULL,
		fixtures_status TEXT NOT NULL,
		fixtures_error TEXT,
		fixtures_generated_at TIMESTAMPTZ,
		registered_teams_count INT NOT NULL DEFAULT 0,
		total_matches_planned INT NOT NULL DEFAULT 0,
		version BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_seasons_league ON seasons (league_id, season_year DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_seasons_generating ON seasons (fixtures_status, updated_at)
		WHERE fixtures_status = 'generating'`,
	`CREATE TABLE IF NOT EXISTS season_teams (
		id UUID PRIMARY KEY,
		season_id UUID NOT NULL REFERENCES seasons(id),
		team_id UUID NOT NULL,
		status TEXT NOT NULL,
		home_venue TEXT,
		registration_date TIMESTAMPTZ NOT NULL,
		withdrawn_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_season_teams_active
		ON season_teams (season_id, team_id) WHERE status <> 'withdrawn'`,
	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		season_id UUID NOT NULL REFERENCES seasons(id),
		home_team_id UUID NOT NULL,
		away_team_id UUID NOT NULL,
		round_number INT NOT NULL,
		match_date TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		home_score INT,
		away_score INT,
		venue TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_season ON matches (season_id, round_number, match_date)`,
	`CREATE TABLE IF NOT EXISTS season_outbox (
		id UUID PRIMARY KEY,
		season_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		sent_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_season_outbox_unsent ON season_outbox (created_at)
		WHERE sent_at IS NULL`,
}

func main() {
	// 1) Load the JSON snapshot
	data, err := os.ReadFile("go/internal/assets/demo_teams.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
		os.Exit(1)
	}
	var teams []DemoTeam
	if err := json.Unmarshal(data, &teams); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Create the schema
	for _, stmt := range schema {
		if _, err := pool.Exec(context.Background(), stmt); err != nil {
			fmt.Fprintf(os.Stderr, "schema: %v\n", err)
			os.Exit(1)
		}
	}

	// 4) Upsert a demo season in registration
	seasonID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	leagueID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	year := time.Now().Year()
	start := time.Date(year, time.September, 6, 0, 0, 0, 0, time.UTC)

	_, err = pool.Exec(context.Background(), `
        INSERT INTO seasons (
          id, league_id, name, season_year, tournament_format, start_date,
          end_date, match_frequency_days, preferred_match_time, min_teams,
          max_teams, rounds_per_pairing, points_for_win, points_for_draw,
          points_for_loss, allow_draws, home_away_balance_required,
          default_venue, status, fixtures_status
        ) VALUES (
          $1,$2,$3,$4,'league',$5,$6,7,'15:00:00',4,12,2,3,1,0,true,true,
          'Municipal Ground','registration','pending'
        )
        ON CONFLICT (id) DO NOTHING
    `, seasonID, leagueID, fmt.Sprintf("Demo League %d/%d", year, year+1),
		year, start, start.AddDate(0, 9, 0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error inserting season: %v\n", err)
		os.Exit(1)
	}

	// 5) Register the demo teams and count
	var (
		total    = len(teams)
		inserted int
		skipped  int
		errs     int
	)

	for i, t := range teams {
		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO season_teams (
              id, season_id, team_id, status, home_venue, registration_date
            ) VALUES ($1,$2,$3,'registered',$4,$5)
            ON CONFLICT (season_id, team_id) WHERE status <> 'withdrawn' DO NOTHING
        `,
			uuid.New(), seasonID, t.ID, t.HomeVenue,
			start.AddDate(0, -2, i),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error registering team %s: %v\n", t.Name, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	if inserted > 0 {
		if _, err := pool.Exec(context.Background(),
			`UPDATE seasons SET registered_teams_count = registered_teams_count + $2,
			 version = version + 1, updated_at = now() WHERE id = $1`,
			seasonID, inserted,
		); err != nil {
			fmt.Fprintf(os.Stderr, "error updating team count: %v\n", err)
			errs++
		}
	}

	// 6) Print summary
	fmt.Printf(
		"Season seed complete: %d teams total, %d registered, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
