// Package events publishes booking lifecycle changes to Kafka for the
// automation side.
package events

import (
	"context"
	"time"

	"kaycrm/pkg/kafka"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/middleware"
	"kaycrm/pkg/model"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"

	SchemaVersion = "1"
	Source        = "bookings"
)

// Producer is the part of *kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// BookingEvent is the message value of every booking event.
type BookingEvent struct {
	BookingID      string       `json:"booking_id"`
	BookingRef     string       `json:"booking_ref"`
	CustomerID     string       `json:"customer_id"`
	VehicleID      string       `json:"vehicle_id"`
	StartDate      string       `json:"start_date"`
	EndDate        string       `json:"end_date"`
	Status         model.Status `json:"status"`
	PreviousStatus model.Status `json:"previous_status,omitempty"`
	OccurredAt     time.Time    `json:"occurred_at"`
}

// KafkaPublisher keys every message by vehicle id, so one vehicle's events
// stay ordered on a single partition.
type KafkaPublisher struct {
	producer Producer
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaPublisher(producer Producer, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, timeout: timeout, log: log}
}

func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) {
	p.publish(ctx, TypeBookingCreated, newBookingEvent(booking, "", booking.CreatedAt))
}

func (p *KafkaPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.Status) {
	p.publish(ctx, TypeBookingStatusChanged, newBookingEvent(booking, from, booking.UpdatedAt))
}

func newBookingEvent(b *model.Booking, from model.Status, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:      b.ID,
		BookingRef:     b.BookingRef,
		CustomerID:     b.CustomerID,
		VehicleID:      b.VehicleID,
		StartDate:      b.Range.Start.String(),
		EndDate:        b.Range.End.String(),
		Status:         b.Status,
		PreviousStatus: from,
		OccurredAt:     at,
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, eventType string, event BookingEvent) {
	msg, err := kafka.NewMessage().
		WithKey(event.VehicleID).
		WithValue(event).
		WithTimestamp(event.OccurredAt).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		Build()
	if err != nil {
		p.log.Error("Failed to build booking event", "event_type", eventType, "booking_id", event.BookingID, "error", err)
		return
	}

	// The booking is already committed; the request being cancelled must
	// not drop the event.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", event.BookingID,
			"vehicle_id", event.VehicleID,
			"error", err,
		)
	}
}
