package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"kaycrm/internal/automation/core"
	"kaycrm/internal/bookings/availability"
	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/internal/bookings/repository"
	"kaycrm/internal/bookings/service"
	"kaycrm/internal/bookings/validator"
	"kaycrm/internal/directory"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/model"
)

func newEngine(t *testing.T) *core.Engine {
	t.Helper()
	log := logger.Discard()

	dir := directory.NewMemoryDirectory()
	dir.AddCustomer(model.Customer{ID: "C1", FullName: "Dana Levi", Phone: "(415) 555-0132"})
	dir.AddVehicle(model.Vehicle{ID: "V1", Plate: "7ABC123", Category: "suv"})

	svc := service.NewBookingService(
		repository.NewMemoryBookingRepository(),
		dir,
		availability.NewIndex(),
		validator.NewBookingValidator(log),
		log,
	)
	return core.NewEngine(All(Deps{Bookings: svc, Customers: dir})...)
}

func run(engine *core.Engine, flow string, input map[string]any) (map[string]any, error) {
	fc := core.NewFlowContext(context.Background(), input)
	err := engine.Run(flow, fc)
	return fc.Output, err
}

func TestCreateBooking_ByPhone(t *testing.T) {
	engine := newEngine(t)

	out, err := run(engine, CreateBookingFlow, map[string]any{
		CUSTOMER_PHONE: "+1 415-555-0132",
		VEHICLE_ID:     "V1",
		START_DATE:     "2025-06-01",
		END_DATE:       "2025-06-05",
	})
	require.NoError(t, err)
	booking := out[BOOKING].(*model.Booking)
	require.Equal(t, "C1", booking.CustomerID)
	require.Equal(t, model.StatusPending, booking.Status)
}

func TestCreateBooking_CustomerResolution(t *testing.T) {
	engine := newEngine(t)

	_, err := run(engine, CreateBookingFlow, map[string]any{VEHICLE_ID: "V1"})
	require.ErrorIs(t, err, core.ErrMissingParam)

	_, err = run(engine, CreateBookingFlow, map[string]any{
		CUSTOMER_PHONE: "+1 212-555-0199",
		VEHICLE_ID:     "V1",
		START_DATE:     "2025-06-01",
		END_DATE:       "2025-06-05",
	})
	require.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestFlows_BookingScenario(t *testing.T) {
	engine := newEngine(t)
	book := func(start, end string) (*model.Booking, error) {
		out, err := run(engine, CreateBookingFlow, map[string]any{
			CUSTOMER_ID: "C1", VEHICLE_ID: "V1", START_DATE: start, END_DATE: end,
		})
		if err != nil {
			return nil, err
		}
		return out[BOOKING].(*model.Booking), nil
	}

	first, err := book("2025-06-01", "2025-06-05")
	require.NoError(t, err)

	out, err := run(engine, CheckAvailabilityFlow, map[string]any{
		VEHICLE_ID: "V1", START_DATE: "2025-06-05", END_DATE: "2025-06-08",
	})
	require.NoError(t, err)
	require.Equal(t, true, out[AVAILABLE])
	require.Equal(t, false, out[AUTHORITATIVE])

	_, err = book("2025-06-03", "2025-06-06")
	var conflict *bookingserrors.ConflictError
	require.True(t, errors.As(err, &conflict), "got %v", err)

	out, err = run(engine, ChangeStatusFlow, map[string]any{BOOKING_ID: first.ID, STATUS: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, model.StatusCancelled, out[BOOKING].(*model.Booking).Status)

	_, err = book("2025-06-03", "2025-06-06")
	require.NoError(t, err)

	_, err = run(engine, ChangeStatusFlow, map[string]any{BOOKING_ID: first.ID, STATUS: "active"})
	require.ErrorIs(t, err, bookingserrors.ErrIllegalTransition)

	_, err = run(engine, ChangeStatusFlow, map[string]any{STATUS: "active"})
	require.ErrorIs(t, err, core.ErrMissingParam)
}
