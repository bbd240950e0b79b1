package repository

import (
	"context"

	"kaycrm/pkg/model"
)

const (
	CollectionName = "Bookings"
)

// BookingRepository persists booking records. Records are never deleted and
// their date range is never rewritten; the only mutation after Create is a
// status change.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Booking, error)
	// FindHeld lists the reservations of every booking whose status still
	// blocks its vehicle.
	FindHeld(ctx context.Context) ([]model.Hold, error)
	// UpdateStatus moves a booking from expected to change.Status and appends
	// change to its history. It fails with ErrStaleStatus when the stored
	// status is no longer expected.
	UpdateStatus(ctx context.Context, id string, expected model.Status, change model.StatusChange) (*model.Booking, error)
}

func heldStatuses() []model.Status {
	var held []model.Status
	for _, s := range model.AllStatuses {
		if s.HoldsRange() {
			held = append(held, s)
		}
	}
	return held
}
