package season

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// WatchdogConfig holds watchdog settings.
type WatchdogConfig struct {
	// SweepInterval is how often the watchdog scans for stuck generations.
	SweepInterval time.Duration
	// StaleAfter is how long a season may sit in generating before it is
	// reported as stalled.
	StaleAfter time.Duration
}

// DefaultWatchdogConfig returns sensible watchdog settings.
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		SweepInterval: 1 * time.Minute,
		StaleAfter:    10 * time.Minute,
	}
}

// Watchdog periodically scans for seasons stuck in generating, typically
// after a crash between the claim and the completing transaction. It only
// reports: each stuck season gets a stalled event once, and resetting is
// left to an operator through ResetStaleGeneration.
type Watchdog struct {
	repo   SeasonRepository
	clock  clockwork.Clock
	config WatchdogConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	// reported tracks season versions already flagged, so a season stuck at
	// the same version is not re-announced every sweep.
	reported map[uuid.UUID]int64
}

// NewWatchdog creates a new generation watchdog.
func NewWatchdog(repo SeasonRepository, clock clockwork.Clock, config WatchdogConfig) *Watchdog {
	return &Watchdog{
		repo:     repo,
		clock:    clock,
		config:   config,
		reported: make(map[uuid.UUID]int64),
	}
}

// Start begins the periodic sweep.
func (w *Watchdog) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watchdog already running")
	}

	w.running = true
	w.stopChan = make(chan struct{})

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("sweep_interval", w.config.SweepInterval).
		Dur("stale_after", w.config.StaleAfter).
		Msg("started generation watchdog")
	return nil
}

// Stop halts the sweep and waits for an in-flight pass to finish.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}

	close(w.stopChan)
	w.wg.Wait()
	w.running = false

	log.Info().Msg("stopped generation watchdog")
}

func (w *Watchdog) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := w.clock.NewTicker(w.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.Chan():
			if err := w.Sweep(ctx); err != nil {
				log.Error().Err(err).Msg("watchdog sweep failed")
			}
		}
	}
}

// Sweep runs one detection pass: every season generating since before the
// stale cutoff gets a stalled event, once per stuck version.
func (w *Watchdog) Sweep(ctx context.Context) error {
	now := w.clock.Now().UTC()
	cutoff := now.Add(-w.config.StaleAfter)

	stale, err := w.repo.ListStaleGenerating(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale generating seasons: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(stale))
	for i := range stale {
		season := &stale[i]
		seen[season.ID] = struct{}{}

		if w.reported[season.ID] == season.Version {
			continue
		}
		if err := w.repo.RecordStalled(ctx, season, now); err != nil {
			log.Error().Err(err).
				Str("season_id", season.ID.String()).
				Msg("failed to record stalled generation")
			continue
		}
		w.reported[season.ID] = season.Version

		log.Warn().
			Str("season_id", season.ID.String()).
			Time("generating_since", season.UpdatedAt).
			Msg("fixture generation appears stalled")
	}

	w.forget(seen)
	return nil
}

// forget drops bookkeeping for seasons no longer stuck, so a season that
// stalls again later is reported again.
func (w *Watchdog) forget(stillStale map[uuid.UUID]struct{}) {
	for id := range w.reported {
		if _, ok := stillStale[id]; !ok {
			delete(w.reported, id)
		}
	}
}
