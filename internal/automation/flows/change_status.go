package flows

import "kaycrm/internal/automation/core"

func (d Deps) changeStatus(fc *core.FlowContext) error {
	id, err := fc.RequireString(BOOKING_ID)
	if err != nil {
		return err
	}

	booking, err := d.Bookings.ChangeStatus(fc.Ctx, id, fc.ExtractString(STATUS))
	if err != nil {
		return err
	}
	fc.Output[BOOKING] = booking
	return nil
}
