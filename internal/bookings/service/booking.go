package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"kaycrm/internal/bookings/availability"
	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/internal/bookings/lifecycle"
	"kaycrm/internal/bookings/repository"
	"kaycrm/internal/bookings/validator"
	"kaycrm/internal/directory"
	"kaycrm/pkg/daterange"
	apperrors "kaycrm/pkg/errors"
	"kaycrm/pkg/keylock"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/model"
	"kaycrm/pkg/sanitizer"
)

const (
	resourceBooking  = "booking"
	resourceCustomer = "customer"
	resourceVehicle  = "vehicle"
)

// BookingService is the reservation coordinator. Every mutation of a
// vehicle's bookings runs under that vehicle's lock, so the availability
// check and the write it guards are indivisible per vehicle.
type BookingService interface {
	CreateBooking(ctx context.Context, in *validator.CreateBookingInput) (*model.Booking, error)
	ChangeStatus(ctx context.Context, id string, requested string) (*model.Booking, error)
	// CheckAvailability is a hint for clients. Only CreateBooking decides.
	CheckAvailability(ctx context.Context, vehicleID, startDate, endDate string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]*model.Booking, error)
	// WarmIndex loads every persisted hold into the availability index.
	WarmIndex(ctx context.Context) error
}

// Lookups are the directory checks a create needs.
type Lookups interface {
	directory.CustomerLookup
	directory.VehicleLookup
}

type bookingService struct {
	repo      repository.BookingRepository
	lookups   Lookups
	index     *availability.Index
	locks     *keylock.KeyedMutex
	validator *validator.BookingValidator
	events    EventPublisher
	clock     Clock
	newRef    func() string
	log       *logger.Logger
}

type Option func(*bookingService)

func WithClock(c Clock) Option {
	return func(s *bookingService) { s.clock = c }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *bookingService) { s.events = p }
}

// WithRefGenerator replaces the booking reference generator.
func WithRefGenerator(fn func() string) Option {
	return func(s *bookingService) { s.newRef = fn }
}

func NewBookingService(
	repo repository.BookingRepository,
	lookups Lookups,
	index *availability.Index,
	validator *validator.BookingValidator,
	log *logger.Logger,
	opts ...Option,
) BookingService {
	s := &bookingService{
		repo:      repo,
		lookups:   lookups,
		index:     index,
		locks:     keylock.New(),
		validator: validator,
		events:    NopPublisher(),
		clock:     SystemClock(),
		newRef:    NewBookingRef,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewBookingRef returns a reference like "BK-7F3A2C9D41B0".
func NewBookingRef() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(id[:12])
}

func (s *bookingService) CreateBooking(ctx context.Context, in *validator.CreateBookingInput) (*model.Booking, error) {
	in.CustomerID = sanitizer.NormalizeID(in.CustomerID)
	in.VehicleID = sanitizer.NormalizeID(in.VehicleID)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)

	if err := s.validator.ValidateCreate(in); err != nil {
		return nil, validationFailed(err)
	}

	r, err := s.validator.ValidateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, invalidRange(in.StartDate, in.EndDate, err)
	}

	if err := s.ensureExists(ctx, resourceCustomer, in.CustomerID, s.lookups.CustomerExists); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, resourceVehicle, in.VehicleID, s.lookups.VehicleExists); err != nil {
		return nil, err
	}

	booking, err := s.reserveAndPersist(ctx, in.CustomerID, in.VehicleID, r)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_ref", booking.BookingRef,
		"vehicle_id", booking.VehicleID,
		"customer_id", booking.CustomerID,
		"range", booking.Range.String(),
	)
	s.events.BookingCreated(ctx, booking.Clone())
	return booking, nil
}

// reserveAndPersist holds the vehicle lock across the index reservation and
// the insert. A failed insert gives the range back before unlocking.
func (s *bookingService) reserveAndPersist(ctx context.Context, customerID, vehicleID string, r daterange.Range) (*model.Booking, error) {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	if err := s.index.Reserve(vehicleID, r); err != nil {
		var conflictErr *bookingserrors.ConflictError
		if errors.As(err, &conflictErr) {
			s.log.Info("Booking rejected: dates unavailable",
				"vehicle_id", vehicleID,
				"range", r.String(),
				"conflicts", len(conflictErr.Conflicts),
			)
			return nil, conflict(conflictErr)
		}
		return nil, apperrors.Internal("Failed to reserve vehicle", err)
	}

	now := s.clock.Now().UTC()
	booking := &model.Booking{
		BookingRef: s.newRef(),
		CustomerID: customerID,
		VehicleID:  vehicleID,
		Range:      r,
		Status:     lifecycle.Initial,
		StatusHistory: []model.StatusChange{
			{Status: lifecycle.Initial, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Once the reservation exists the write must not be abandoned because
	// the caller went away.
	if err := s.repo.Create(context.WithoutCancel(ctx), booking); err != nil {
		s.index.Release(vehicleID, r)
		s.log.Error("Failed to persist booking, reservation released",
			"vehicle_id", vehicleID,
			"range", r.String(),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	return booking, nil
}

func (s *bookingService) ChangeStatus(ctx context.Context, id string, requested string) (*model.Booking, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	in := &validator.ChangeStatusInput{Status: strings.TrimSpace(requested)}
	if err := s.validator.ValidateChangeStatus(in); err != nil {
		return nil, validationFailed(err)
	}
	// Unknown values are kept as-is so the lifecycle rejects them as an
	// illegal edge.
	next := model.Status(strings.ToLower(in.Status))

	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, from, err := s.transition(ctx, booking.VehicleID, id, next)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking status changed",
		"id", updated.ID,
		"booking_ref", updated.BookingRef,
		"vehicle_id", updated.VehicleID,
		"from", from,
		"to", updated.Status,
	)
	s.events.BookingStatusChanged(ctx, updated.Clone(), from)
	return updated, nil
}

// transition applies current -> next under the vehicle lock. The booking is
// re-read after locking; the first read only told us which vehicle to lock.
func (s *bookingService) transition(ctx context.Context, vehicleID, id string, next model.Status) (*model.Booking, model.Status, error) {
	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}

	t, err := lifecycle.Next(current.Status, next)
	if err != nil {
		var illegal *bookingserrors.IllegalTransitionError
		if errors.As(err, &illegal) {
			return nil, "", illegalTransition(illegal)
		}
		return nil, "", apperrors.Internal("Failed to evaluate status change", err)
	}

	change := model.StatusChange{Status: t.To, At: s.clock.Now().UTC()}
	updated, err := s.repo.UpdateStatus(context.WithoutCancel(ctx), id, t.From, change)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, "", notFound(resourceBooking, id)
		case errors.Is(err, bookingserrors.ErrStaleStatus):
			s.log.Warn("Booking status changed outside the coordinator", "id", id, "error", err)
			return nil, "", apperrors.Conflict("Booking was modified concurrently, reload and retry", err)
		default:
			return nil, "", apperrors.Internal("Failed to update booking status", err)
		}
	}

	if t.ReleasesRange {
		s.index.Release(current.VehicleID, current.Range)
	}
	return updated, t.From, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, vehicleID, startDate, endDate string) (bool, error) {
	in := &validator.AvailabilityInput{
		VehicleID: sanitizer.NormalizeID(vehicleID),
		StartDate: strings.TrimSpace(startDate),
		EndDate:   strings.TrimSpace(endDate),
	}
	if err := s.validator.ValidateAvailability(in); err != nil {
		return false, validationFailed(err)
	}

	r, err := s.validator.ValidateRange(in.StartDate, in.EndDate)
	if err != nil {
		return false, invalidRange(in.StartDate, in.EndDate, err)
	}

	return s.index.IsAvailable(in.VehicleID, r), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.load(ctx, id)
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		// A malformed id cannot name an existing booking.
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, notFound(resourceBooking, id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) ListByVehicle(ctx context.Context, vehicleID string) ([]*model.Booking, error) {
	vehicleID = sanitizer.NormalizeID(vehicleID)
	if vehicleID == "" {
		return nil, apperrors.InvalidInput("Vehicle ID cannot be empty")
	}
	if err := s.ensureExists(ctx, resourceVehicle, vehicleID, s.lookups.VehicleExists); err != nil {
		return nil, err
	}

	bookings, err := s.repo.FindByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve vehicle bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) WarmIndex(ctx context.Context) error {
	holds, err := s.repo.FindHeld(ctx)
	if err != nil {
		return apperrors.Internal("Failed to load held reservations", err)
	}

	if err := s.index.Load(holds); err != nil {
		// Overlapping holds in storage predate the index; the first one
		// loaded wins and the rest stay visible in the audit.
		s.log.Warn("Persisted reservations overlap, some were not indexed", "error", err)
	}
	s.log.Info("Availability index warmed", "holds", len(holds))
	return nil
}

func (s *bookingService) ensureExists(ctx context.Context, resource, id string, exists func(context.Context, string) (bool, error)) error {
	ok, err := exists(ctx, id)
	if err != nil {
		s.log.Error("Directory lookup failed", "resource", resource, "id", id, "error", err)
		return apperrors.Internal("Failed to look up "+resource, err)
	}
	if !ok {
		return notFound(resource, id)
	}
	return nil
}
