package service

import (
	"context"

	"kaycrm/pkg/model"
)

// EventPublisher is told about committed changes. Implementations must not
// fail the caller: delivery problems are theirs to log.
type EventPublisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingStatusChanged(ctx context.Context, booking *model.Booking, from model.Status)
}

type nopPublisher struct{}

func (nopPublisher) BookingCreated(context.Context, *model.Booking) {}

func (nopPublisher) BookingStatusChanged(context.Context, *model.Booking, model.Status) {}

// NopPublisher drops every event.
func NopPublisher() EventPublisher { return nopPublisher{} }
