// Package lifecycle holds the booking status state machine. It is pure: no
// storage, no clock, no I/O.
package lifecycle

import (
	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/pkg/model"
)

// Transition is the outcome of a legal status change.
type Transition struct {
	From          model.Status
	To            model.Status
	ReleasesRange bool
}

// edges lists every legal transition. Terminal states have no entry.
var edges = map[model.Status]map[model.Status]bool{
	model.StatusPending: {
		model.StatusActive:    false,
		model.StatusCancelled: true,
	},
	model.StatusActive: {
		model.StatusCompleted: true,
		model.StatusCancelled: true,
	},
}

// Initial is the only status a booking may be created in.
const Initial = model.StatusPending

// Next validates current -> requested and reports whether the booking's
// held range must be released.
func Next(current, requested model.Status) (Transition, error) {
	releases, ok := edges[current][requested]
	if !ok {
		return Transition{}, &bookingserrors.IllegalTransitionError{From: current, To: requested}
	}
	return Transition{From: current, To: requested, ReleasesRange: releases}, nil
}

// Allowed returns the statuses reachable from current, in lifecycle order.
func Allowed(current model.Status) []model.Status {
	var out []model.Status
	for _, s := range model.AllStatuses {
		if _, ok := edges[current][s]; ok {
			out = append(out, s)
		}
	}
	return out
}
