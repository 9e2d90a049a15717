package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/Gansovic/matchday/go/internal/season"
	"github.com/Gansovic/matchday/go/internal/seasonteam"
)

type Services struct {
	Season   *season.Service
	Watchdog *season.Watchdog
}

func setupServices(database *sql.DB, clock clockwork.Clock, watchdogCfg season.WatchdogConfig) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer

	seasonRepo := season.NewRepository(database)
	teamRepo := seasonteam.NewRepository(database)

	// The lifecycle manager reads registrations straight from the registry
	// repository; the registry app layer depends on the lifecycle manager
	// for season reads and match cancellation.
	seasonApp := season.NewApp(seasonRepo, teamRepo, clock, watchdogCfg.StaleAfter)
	registryApp := seasonteam.NewApp(teamRepo, seasonApp, seasonApp, clock)

	return &Services{
		Season:   season.NewService(seasonApp, registryApp),
		Watchdog: season.NewWatchdog(seasonRepo, clock, watchdogCfg),
	}
}
