package flows

import "kaycrm/internal/automation/core"

// checkAvailability answers from the index without reserving anything; the
// answer can be stale by the time create_booking runs.
func (d Deps) checkAvailability(fc *core.FlowContext) error {
	vehicleID, err := fc.RequireString(VEHICLE_ID)
	if err != nil {
		return err
	}

	start := fc.ExtractString(START_DATE)
	end := fc.ExtractString(END_DATE)
	available, err := d.Bookings.CheckAvailability(fc.Ctx, vehicleID, start, end)
	if err != nil {
		return err
	}

	fc.Output[VEHICLE_ID] = vehicleID
	fc.Output[START_DATE] = start
	fc.Output[END_DATE] = end
	fc.Output[AVAILABLE] = available
	fc.Output[AUTHORITATIVE] = false
	return nil
}
