package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/beauty-booking-api/internal/models"
	"github.com/noah-isme/beauty-booking-api/pkg/jobs"
)

// Event delivery results recorded by MetricsService.
const (
	EventPublished = "published"
	EventFailed    = "failed"
	EventDropped   = "dropped"
)

type bookingEventPublisher interface {
	PublishBookingCreated(ctx context.Context, event models.BookingCreatedEvent) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// EventService hands booking events to a background queue. Emission never blocks or fails
// the caller; a full or missing queue drops the event with a warning.
type EventService struct {
	publisher bookingEventPublisher
	queue     jobEnqueuer
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService constructs the emitter. Attach a queue before emitting.
func NewEventService(publisher bookingEventPublisher, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{publisher: publisher, metrics: metrics, logger: logger, now: time.Now}
}

// AttachQueue sets the queue whose handler is Handle.
func (s *EventService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

// EmitBookingCreated schedules a booking.created event.
func (s *EventService) EmitBookingCreated(booking *models.Booking) {
	if booking == nil {
		return
	}
	event := models.BookingCreatedEvent{
		EventID:          uuid.NewString(),
		Type:             models.EventBookingCreated,
		OccurredAt:       s.now().UTC(),
		BookingID:        booking.ID,
		ProviderID:       booking.ProviderID,
		ServiceID:        booking.ServiceID,
		CustomerID:       booking.CustomerID,
		Date:             booking.Date(),
		StartTime:        booking.StartTime.String(),
		EndTime:          booking.EndTime.String(),
		Status:           booking.Status,
		Amount:           booking.Amount,
		PlatformFee:      booking.PlatformFee,
		ProviderEarnings: booking.ProviderEarnings,
	}

	if s.queue == nil {
		s.drop(event, errors.New("event queue not attached"))
		return
	}
	if err := s.queue.TryEnqueue(jobs.Job{ID: event.EventID, Type: event.Type, Payload: event}); err != nil {
		s.drop(event, err)
	}
}

func (s *EventService) drop(event models.BookingCreatedEvent, err error) {
	s.metrics.RecordEvent(EventDropped)
	s.logger.Warn("booking event dropped",
		zap.String("event_id", event.EventID),
		zap.String("booking_id", event.BookingID),
		zap.Error(err),
	)
}

// Handle is the queue handler publishing one event.
func (s *EventService) Handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.BookingCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	if err := s.publisher.PublishBookingCreated(ctx, event); err != nil {
		s.metrics.RecordEvent(EventFailed)
		return err
	}
	s.metrics.RecordEvent(EventPublished)
	return nil
}
