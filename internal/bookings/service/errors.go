package service

import (
	"errors"
	"fmt"

	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/internal/bookings/lifecycle"
	"kaycrm/internal/bookings/validator"
	"kaycrm/pkg/daterange"
	apperrors "kaycrm/pkg/errors"
)

func validationFailed(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid request", verrs.Details()).WithCause(err)
	}
	return apperrors.Internal("Failed to validate request", err)
}

func invalidRange(start, end string, err error) error {
	details := map[string]any{
		"start_date": start,
		"end_date":   end,
	}
	var rangeErr *daterange.InvalidRangeError
	if errors.As(err, &rangeErr) {
		details["reason"] = rangeErr.Reason
	}
	return apperrors.Validation("Invalid date range", details).WithCause(err)
}

func notFound(resource, id string) error {
	return apperrors.NotFoundWithID(resource, id, &bookingserrors.NotFoundError{Resource: resource, ID: id})
}

func conflict(err *bookingserrors.ConflictError) error {
	held := make([]map[string]string, 0, len(err.Conflicts))
	for _, r := range err.Conflicts {
		held = append(held, map[string]string{
			"start_date": r.Start.String(),
			"end_date":   r.End.String(),
		})
	}
	return apperrors.Conflict("Vehicle is not available for the requested dates", err).WithDetails(map[string]any{
		"vehicle_id": err.VehicleID,
		"start_date": err.Requested.Start.String(),
		"end_date":   err.Requested.End.String(),
		"conflicts":  held,
	})
}

func illegalTransition(err *bookingserrors.IllegalTransitionError) error {
	allowed := make([]string, 0)
	for _, s := range lifecycle.Allowed(err.From) {
		allowed = append(allowed, s.String())
	}
	return apperrors.IllegalTransition(
		fmt.Sprintf("Booking cannot move from %s to %s", err.From, err.To), err,
	).WithDetails(map[string]any{
		"from":    err.From.String(),
		"to":      err.To.String(),
		"allowed": allowed,
	})
}
