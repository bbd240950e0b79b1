package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/pkg/model"
)

type memoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*model.Booking
	order    []string
}

// NewMemoryBookingRepository keeps bookings in process memory. It backs the
// "memory" storage mode and the service tests.
func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{bookings: make(map[string]*model.Booking)}
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if booking.BookingRef != "" && b.BookingRef == booking.BookingRef {
			return fmt.Errorf("failed to create booking: duplicate booking_ref %s", booking.BookingRef)
		}
	}

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}
	booking.ID = uuid.NewString()

	r.bookings[booking.ID] = booking.Clone()
	r.order = append(r.order, booking.ID)
	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return b.Clone(), nil
}

func (r *memoryBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Booking{}
	if offset >= int64(len(r.order)) {
		return result, nil
	}
	for _, id := range r.order[offset:] {
		if len(result) == limit {
			break
		}
		result = append(result, r.bookings[id].Clone())
	}
	return result, nil
}

func (r *memoryBookingRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.order)), nil
}

func (r *memoryBookingRepository) FindByVehicle(ctx context.Context, vehicleID string) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Booking{}
	for _, id := range r.order {
		if b := r.bookings[id]; b.VehicleID == vehicleID {
			result = append(result, b.Clone())
		}
	}
	slices.SortStableFunc(result, func(a, b *model.Booking) int {
		return a.Range.Start.Compare(b.Range.Start)
	})
	return result, nil
}

func (r *memoryBookingRepository) FindHeld(ctx context.Context) ([]model.Hold, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holds := []model.Hold{}
	for _, id := range r.order {
		b := r.bookings[id]
		if b.Status.HoldsRange() {
			holds = append(holds, model.Hold{BookingID: b.ID, VehicleID: b.VehicleID, Range: b.Range})
		}
	}
	slices.SortFunc(holds, func(a, b model.Hold) int {
		return cmp.Or(cmp.Compare(a.VehicleID, b.VehicleID), a.Range.Start.Compare(b.Range.Start))
	})
	return holds, nil
}

func (r *memoryBookingRepository) UpdateStatus(ctx context.Context, id string, expected model.Status, change model.StatusChange) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if b.Status != expected {
		return nil, fmt.Errorf("%w: expected %s, found %s", bookingserrors.ErrStaleStatus, expected, b.Status)
	}

	b.Status = change.Status
	b.UpdatedAt = change.At
	b.StatusHistory = append(b.StatusHistory, change)
	return b.Clone(), nil
}
