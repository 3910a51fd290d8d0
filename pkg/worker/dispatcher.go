package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/healthrec/record-api/internal/email"
	"github.com/healthrec/record-api/internal/model"
	"github.com/healthrec/record-api/internal/repository"
	apperrors "github.com/healthrec/record-api/pkg/errors"
	"github.com/healthrec/record-api/pkg/logger"
	"github.com/healthrec/record-api/pkg/messaging"
	"github.com/healthrec/record-api/pkg/metrics"
)

type DispatcherConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	RetainFor     time.Duration
}

// Dispatcher drains the outbox and materializes Notification rows. Delivery
// is at-least-once: a crash between insert and status update replays the
// event, and the duplicate row is accepted. Events whose recipient no longer
// exists are dropped silently.
type Dispatcher struct {
	outbox        repository.OutboxRepository
	notifications repository.NotificationRepository
	accounts      repository.AccountRepository
	broker        messaging.Broker
	emailSvc      email.Service
	config        DispatcherConfig
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

func NewDispatcher(
	outbox repository.OutboxRepository,
	notifications repository.NotificationRepository,
	accounts repository.AccountRepository,
	broker messaging.Broker,
	emailSvc email.Service,
	config DispatcherConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}

	return &Dispatcher{
		outbox:        outbox,
		notifications: notifications,
		accounts:      accounts,
		broker:        broker,
		emailSvc:      emailSvc,
		config:        config,
		logger:        log,
		metrics:       m,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info("starting notification dispatcher")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down notification dispatcher")
			return
		case <-ticker.C:
			if err := d.processEvents(ctx); err != nil {
				d.logger.Error(err, "failed to process events")
			}
		}
	}
}

func (d *Dispatcher) processEvents(ctx context.Context) error {
	timer := prometheus.NewTimer(d.metrics.DispatchLatency)
	defer timer.ObserveDuration()

	events, err := d.outbox.GetPendingEventsWithLock(ctx, d.config.BatchSize)
	if err != nil {
		d.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "error").Inc()
		return fmt.Errorf("failed to get pending events: %w", err)
	}
	d.metrics.DatabaseOperations.WithLabelValues("get_pending_events", "success").Inc()

	for _, event := range events {
		if err := d.processEvent(ctx, event); err != nil {
			d.logger.Error(err, "failed to process event",
				"event_id", event.ID.String(),
				"event_type", string(event.EventType))
		}
	}

	if d.config.RetainFor > 0 {
		if _, err := d.outbox.DeleteProcessedBefore(ctx, time.Now().Add(-d.config.RetainFor)); err != nil {
			d.logger.Error(err, "failed to prune processed events")
		}
	}

	return nil
}

func (d *Dispatcher) processEvent(ctx context.Context, event *model.OutboxEvent) error {
	var payload model.NotificationPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		// Unparseable payloads will never succeed; fail them permanently.
		msg := err.Error()
		return d.outbox.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &msg, nil)
	}

	recipient, err := d.accounts.Get(ctx, payload.RecipientID)
	if apperrors.IsNotFound(err) {
		// Recipient gone: drop the event, best-effort by design.
		d.metrics.EventsDropped.Inc()
		d.logger.Info("dropping event for missing recipient",
			"event_id", event.ID.String(),
			"recipient_id", payload.RecipientID.String())
		return d.outbox.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil)
	}
	if err != nil {
		return d.scheduleRetry(ctx, event, err)
	}

	notification := &model.Notification{
		ID:          uuid.New(),
		RecipientID: recipient.ID,
		Type:        event.EventType,
		Title:       payload.Title,
		Message:     payload.Message,
	}
	if err := d.notifications.Create(ctx, notification); err != nil {
		return d.scheduleRetry(ctx, event, err)
	}

	// Downstream fan-out is strictly best-effort; the row is the contract.
	if err := d.broker.Publish(ctx, "notifications", notification); err != nil {
		d.logger.Error(err, "failed to publish notification event",
			"notification_id", notification.ID.String())
	}
	if err := d.emailSvc.SendNotification(recipient.Email, notification.Title, notification.Message); err != nil {
		d.logger.Error(err, "failed to send notification email",
			"notification_id", notification.ID.String())
	}

	d.metrics.EventsDispatched.Inc()
	return d.outbox.UpdateStatus(ctx, event.ID, model.OutboxStatusProcessed, nil, nil)
}

func (d *Dispatcher) scheduleRetry(ctx context.Context, event *model.OutboxEvent, cause error) error {
	msg := cause.Error()

	if event.RetryCount+1 >= d.config.RetryAttempts {
		d.metrics.EventsFailed.Inc()
		if err := d.outbox.UpdateStatus(ctx, event.ID, model.OutboxStatusFailed, &msg, nil); err != nil {
			return fmt.Errorf("failed to mark event failed: %w", err)
		}
		return cause
	}

	d.metrics.EventRetries.WithLabelValues(string(event.EventType)).Inc()
	retryAt := time.Now().Add(d.config.RetryDelay * time.Duration(event.RetryCount+1))
	if err := d.outbox.UpdateStatus(ctx, event.ID, model.OutboxStatusRetry, &msg, &retryAt); err != nil {
		return fmt.Errorf("failed to schedule retry: %w", err)
	}
	return cause
}
