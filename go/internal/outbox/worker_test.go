package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowPublisher struct {
	delay    time.Duration
	failures int
}

func (p *slowPublisher) Publish(ctx context.Context, event Event) error {
	time.Sleep(p.delay)
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	return nil
}

type recordingMetrics struct {
	NoOpMetricsCollector
	durations []time.Duration
	successes []bool
	attempts  int
}

func (m *recordingMetrics) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	m.durations = append(m.durations, duration)
	m.successes = append(m.successes, success)
}

func (m *recordingMetrics) RecordPublishAttempt(eventType string, attempt int, success bool) {
	m.attempts++
}

func testEvent() Event {
	return Event{
		ID:        uuid.New(),
		SeasonID:  uuid.New(),
		EventType: EventTeamRegistered,
		Payload:   []byte(`{}`),
		CreatedAt: time.Now().UTC(),
	}
}

func TestPublishEventRecordsPerEventDuration(t *testing.T) {
	const delay = 20 * time.Millisecond
	metrics := &recordingMetrics{}
	worker := NewWorker(nil, &slowPublisher{delay: delay}, DefaultConfig(), metrics)

	for i := 0; i < 3; i++ {
		require.NoError(t, worker.publishEvent(context.Background(), testEvent()))
	}

	require.Len(t, metrics.durations, 3)
	for _, d := range metrics.durations {
		// each measurement covers only its own event, so later events in
		// the batch must not accumulate earlier publish time
		assert.GreaterOrEqual(t, d, delay)
		assert.Less(t, d, 3*delay)
	}
	assert.Equal(t, []bool{true, true, true}, metrics.successes)
}

func TestPublishEventRetriesAndRecordsFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryDelay = time.Millisecond

	metrics := &recordingMetrics{}
	worker := NewWorker(nil, &slowPublisher{failures: 5}, cfg, metrics)

	err := worker.publishEvent(context.Background(), testEvent())
	require.Error(t, err)

	assert.Equal(t, 2, metrics.attempts)
	assert.Equal(t, []bool{false}, metrics.successes)
}
