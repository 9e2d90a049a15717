package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Gansovic/matchday/go/internal/outbox/db"
)

// Config tunes the dispatch worker.
type Config struct {
	PollInterval time.Duration
	BatchSize    int32
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   time.Second,
	}
}

// Worker polls the outbox table and publishes unsent events. Fetch, publish,
// and mark-sent happen inside one transaction per batch; SKIP LOCKED in the
// fetch keeps multiple workers from racing on the same rows.
type Worker struct {
	db        *sql.DB
	queries   *db.Queries
	publisher Publisher
	config    Config
	metrics   MetricsCollector

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewWorker(database *sql.DB, publisher Publisher, cfg Config, metrics MetricsCollector) *Worker {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &Worker{
		db:        database,
		queries:   db.New(database),
		publisher: publisher,
		config:    cfg,
		metrics:   metrics,
		stopChan:  make(chan struct{}),
	}
}

func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("poll_interval", w.config.PollInterval).
		Int32("batch_size", w.config.BatchSize).
		Msg("outbox worker started")

	return nil
}

func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("outbox worker stopped")
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	w.ProcessOutbox(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.ProcessOutbox(ctx)
		}
	}
}

// ProcessOutbox drains one batch. Exported so the LISTEN/NOTIFY listener can
// trigger an immediate drain outside the poll cadence.
func (w *Worker) ProcessOutbox(ctx context.Context) {
	start := time.Now()

	txn, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin outbox transaction")
		return
	}
	defer func() {
		if err != nil {
			_ = txn.Rollback()
		}
	}()

	qtx := w.queries.WithTx(txn)

	events, err := qtx.FetchUnsentEvents(ctx, w.config.BatchSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch unsent events")
		return
	}

	if len(events) == 0 {
		_ = txn.Rollback()
		return
	}

	var successfulIDs []uuid.UUID
	for _, row := range events {
		event := Event{
			ID:        row.ID,
			SeasonID:  row.SeasonID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		}

		published := w.publishEvent(ctx, event)
		if published != nil {
			log.Error().
				Err(published).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			continue
		}

		successfulIDs = append(successfulIDs, event.ID)
	}

	if len(successfulIDs) > 0 {
		if err = qtx.MarkEventsSent(ctx, successfulIDs); err != nil {
			log.Error().Err(err).Msg("failed to mark events as sent")
			return
		}
	}

	if err = txn.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit outbox transaction")
		return
	}

	w.metrics.RecordBatchProcessed(len(successfulIDs), time.Since(start))
	w.metrics.RecordOutboxLag(len(events) - len(successfulIDs))

	log.Debug().
		Int("total", len(events)).
		Int("successful", len(successfulIDs)).
		Msg("processed outbox events")
}

// publishEvent publishes one event and records its dispatch duration. The
// timer covers only this event's attempts, not the rest of the batch.
func (w *Worker) publishEvent(ctx context.Context, event Event) error {
	start := time.Now()
	err := w.publishWithRetry(ctx, event)
	w.metrics.RecordEventProcessed(event.EventType, err == nil, time.Since(start))
	return err
}

func (w *Worker) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.config.RetryDelay * time.Duration(attempt)):
			}
		}

		lastErr = w.publisher.Publish(ctx, event)
		w.metrics.RecordPublishAttempt(event.EventType, attempt+1, lastErr == nil)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.config.MaxRetries+1, lastErr)
}
