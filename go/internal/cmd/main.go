package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Gansovic/matchday/go/internal/outbox"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	watchdogCfg, err := cfg.watchdogConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid watchdog config")
	}
	outboxCfg, err := cfg.outboxConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid outbox config")
	}

	database, dsn, err := setupDatabase()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	var publisher outbox.Publisher = outbox.NewLogPublisher()
	if cfg.NATS.Enabled {
		jsPublisher, err := outbox.NewJetStreamPublisher(cfg.jetStreamConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to NATS")
		}
		defer jsPublisher.Close()
		publisher = jsPublisher
	}

	clock := clockwork.NewRealClock()
	services := setupServices(database, clock, watchdogCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := outbox.NewWorker(database, publisher, outboxCfg, nil)
	if err := worker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start outbox worker")
	}
	defer worker.Stop()

	listenerCfg := outbox.DefaultListenerConfig()
	listenerCfg.DatabaseURL = dsn
	listener, err := outbox.NewListener(worker, listenerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create outbox listener")
	}
	// the listener loop blocks until shutdown, so run it off the main
	// goroutine; Start closes the underlying connection on its way out
	errCh := make(chan error, 1)
	go func() {
		errCh <- listener.Start(ctx)
	}()

	if err := services.Watchdog.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start generation watchdog")
	}
	defer services.Watchdog.Stop()

	log.Info().Msg("season engine running")
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("outbox listener stopped")
		}
	}
}
