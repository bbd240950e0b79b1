package flows

import (
	"errors"

	"kaycrm/internal/automation/core"
	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/internal/bookings/validator"
	"kaycrm/internal/directory"
	apperrors "kaycrm/pkg/errors"
)

// resolveCustomer accepts either customer_id or customer_phone. The id wins
// when both are present.
func (d Deps) resolveCustomer(fc *core.FlowContext) error {
	if id := fc.ExtractString(CUSTOMER_ID); !core.IsMissing(id) {
		fc.Process[RESOLVED_ID] = id
		return nil
	}

	phone := fc.ExtractString(CUSTOMER_PHONE)
	if core.IsMissing(phone) {
		return core.MissingParamErr(CUSTOMER_ID + " or " + CUSTOMER_PHONE)
	}

	customer, err := d.Customers.FindCustomerByPhone(fc.Ctx, phone)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return apperrors.NotFoundWithID("customer", phone,
				&bookingserrors.NotFoundError{Resource: "customer", ID: phone})
		}
		return apperrors.Internal("Failed to look up customer", err)
	}
	fc.Process[RESOLVED_ID] = customer.ID
	return nil
}

func (d Deps) createBooking(fc *core.FlowContext) error {
	customerID, _ := fc.Process[RESOLVED_ID].(string)

	booking, err := d.Bookings.CreateBooking(fc.Ctx, &validator.CreateBookingInput{
		CustomerID: customerID,
		VehicleID:  fc.ExtractString(VEHICLE_ID),
		StartDate:  fc.ExtractString(START_DATE),
		EndDate:    fc.ExtractString(END_DATE),
	})
	if err != nil {
		return err
	}
	fc.Output[BOOKING] = booking
	return nil
}
