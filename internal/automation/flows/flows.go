// Package flows holds the automation actions. Each flow only talks to the
// booking coordinator; none of them touch storage or the index directly.
package flows

import (
	"context"

	"kaycrm/internal/automation/core"
	"kaycrm/internal/bookings/service"
	"kaycrm/pkg/model"
)

const (
	CreateBookingFlow     = "create_booking"
	ChangeStatusFlow      = "change_status"
	CheckAvailabilityFlow = "check_availability"
)

// Input keys.
const (
	CUSTOMER_ID    = "customer_id"
	CUSTOMER_PHONE = "customer_phone"
	VEHICLE_ID     = "vehicle_id"
	START_DATE     = "start_date"
	END_DATE       = "end_date"
	BOOKING_ID     = "booking_id"
	STATUS         = "status"
)

// Output and process keys.
const (
	BOOKING       = "booking"
	AVAILABLE     = "available"
	AUTHORITATIVE = "authoritative"
	RESOLVED_ID   = "resolved_customer_id"
)

type CustomerFinder interface {
	FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error)
}

type Deps struct {
	Bookings  service.BookingService
	Customers CustomerFinder
}

// All returns every automation flow bound to deps.
func All(deps Deps) []core.Flow {
	return []core.Flow{
		core.NewFlow(CreateBookingFlow,
			core.NewStep("resolve_customer", deps.resolveCustomer),
			core.NewStep("create_booking", deps.createBooking),
		),
		core.NewFlow(ChangeStatusFlow,
			core.NewStep("change_status", deps.changeStatus),
		),
		core.NewFlow(CheckAvailabilityFlow,
			core.NewStep("check_availability", deps.checkAvailability),
		),
	}
}
