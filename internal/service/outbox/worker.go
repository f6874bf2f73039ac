package outbox

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ordersync/internal/domain"
	"github.com/vladislavdragonenkov/ordersync/internal/metrics"
)

const (
	defaultPollInterval  = time.Second
	defaultBatchSize     = 100
	defaultMaxAttempts   = 3
	defaultRetryDelay    = 50 * time.Millisecond
	defaultMaxRetryDelay = 5 * time.Second
)

const (
	resultSent       = "sent"
	resultRetryError = "retry_error"
	resultFailed     = "failed"
)

// Worker переносит события заказов из outbox в брокер.
//
// Сообщение, которое не удалось опубликовать за maxAttempts попыток,
// помечается failed и больше не выбирается. Полная пачка означает, что
// backlog ещё не разобран, поэтому следующая выбирается сразу, без ожидания тика.
type Worker struct {
	repo      domain.OutboxRepository
	publisher domain.OutboxPublisher
	metrics   *metrics.OutboxMetrics
	logger    *log.Entry

	pollInterval  time.Duration
	batchSize     int
	maxAttempts   int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

// Option настраивает Worker.
type Option func(*Worker)

func WithLogger(logger *log.Entry) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithMetrics(m *metrics.OutboxMetrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithPollInterval задаёт паузу между опросами пустого outbox.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

func WithBatchSize(size int) Option {
	return func(w *Worker) {
		if size > 0 {
			w.batchSize = size
		}
	}
}

// WithMaxAttempts задаёт число попыток публикации до пометки failed.
func WithMaxAttempts(attempts int) Option {
	return func(w *Worker) {
		if attempts > 0 {
			w.maxAttempts = attempts
		}
	}
}

// WithRetryBaseDelay задаёт задержку перед второй попыткой; дальше она удваивается.
// Ноль отключает ожидание между попытками.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(w *Worker) { w.retryDelay = max(delay, 0) }
}

// WithMaxRetryDelay ограничивает рост задержки между попытками.
func WithMaxRetryDelay(delay time.Duration) Option {
	return func(w *Worker) {
		if delay > 0 {
			w.maxRetryDelay = delay
		}
	}
}

// NewWorker создаёт воркер. Неположительные параметры оставляют значения по умолчанию.
func NewWorker(repo domain.OutboxRepository, publisher domain.OutboxPublisher, opts ...Option) *Worker {
	w := &Worker{
		repo:          repo,
		publisher:     publisher,
		logger:        log.WithField("component", "outbox-worker"),
		pollInterval:  defaultPollInterval,
		batchSize:     defaultBatchSize,
		maxAttempts:   defaultMaxAttempts,
		retryDelay:    defaultRetryDelay,
		maxRetryDelay: defaultMaxRetryDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run разбирает outbox до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.repo == nil || w.publisher == nil {
		w.logger.Warn("outbox worker is disabled: repo or publisher is nil")
		return
	}

	w.logger.WithFields(log.Fields{
		"poll_interval": w.pollInterval,
		"batch_size":    w.batchSize,
	}).Info("outbox worker started")
	defer w.logger.Info("outbox worker stopped")

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.drain(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil && w.ProcessOnce(ctx) == w.batchSize {
	}
}

// ProcessOnce публикует одну пачку pending-сообщений и возвращает,
// сколько из них помечено sent.
func (w *Worker) ProcessOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	defer w.refreshBacklog()

	batch, err := w.repo.PullPending(w.batchSize)
	if err != nil {
		w.logger.WithError(err).Warn("failed to pull pending outbox messages")
		return 0
	}

	sent := 0
	for _, msg := range batch {
		if ctx.Err() != nil {
			break
		}
		if w.deliver(ctx, msg) {
			sent++
		}
	}
	return sent
}

// deliver публикует одно сообщение и фиксирует результат в репозитории.
func (w *Worker) deliver(ctx context.Context, msg domain.OutboxMessage) bool {
	logger := w.logger.WithFields(log.Fields{
		"outbox_id":  msg.ID,
		"event_type": msg.EventType,
		"order_id":   msg.AggregateID,
	})

	if err := w.publishWithRetry(ctx, msg); err != nil {
		if ctx.Err() != nil {
			// Сообщение останется pending и уйдёт после рестарта.
			return false
		}
		logger.WithError(err).Error("outbox publish failed after retries")
		w.metrics.RecordAttempt(resultFailed)
		if markErr := w.repo.MarkFailed(msg.ID); markErr != nil {
			logger.WithError(markErr).Warn("failed to mark outbox message as failed")
		}
		return false
	}

	if err := w.repo.MarkSent(msg.ID); err != nil {
		logger.WithError(err).Warn("failed to mark outbox message as sent")
		return false
	}
	logger.Debug("outbox message published")
	return true
}

func (w *Worker) publishWithRetry(ctx context.Context, msg domain.OutboxMessage) error {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if attempt > 1 {
			if delay := w.retryBackoff(attempt - 1); delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}

		lastErr = w.publisher.Publish(msg)
		if lastErr == nil {
			w.metrics.RecordAttempt(resultSent)
			return nil
		}
		w.metrics.RecordAttempt(resultRetryError)
	}
	return fmt.Errorf("%w after %d attempts: %w", domain.ErrOutboxPublish, w.maxAttempts, lastErr)
}

// retryBackoff возвращает задержку после attempt-й неудачной попытки.
func (w *Worker) retryBackoff(attempt int) time.Duration {
	delay := w.retryDelay
	for i := 1; i < attempt && delay < w.maxRetryDelay; i++ {
		delay *= 2
	}
	return min(delay, w.maxRetryDelay)
}

func (w *Worker) refreshBacklog() {
	stats, err := w.repo.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect outbox backlog stats")
		return
	}
	w.metrics.SetBacklog(stats.PendingCount, stats.OldestPendingAt, time.Now())
}
