package errors

import (
	"errors"
	"fmt"
	"strings"

	"kaycrm/pkg/daterange"
	"kaycrm/pkg/model"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrConflict = errors.New("requested dates conflict with an existing reservation")

	ErrIllegalTransition = errors.New("illegal booking status transition")

	ErrInvalidRange = daterange.ErrInvalidRange

	// ErrStaleStatus is returned by repositories when a compare-and-set on
	// the booking status finds a different current status.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

// ConflictError names every held range that overlaps the requested one.
type ConflictError struct {
	VehicleID string
	Requested daterange.Range
	Conflicts []daterange.Range
}

func (e *ConflictError) Error() string {
	held := make([]string, 0, len(e.Conflicts))
	for _, r := range e.Conflicts {
		held = append(held, r.String())
	}
	return fmt.Sprintf("vehicle %s is already reserved for %s (requested %s)",
		e.VehicleID, strings.Join(held, ", "), e.Requested)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

type IllegalTransitionError struct {
	From model.Status
	To   model.Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot change booking status from %q to %q", e.From, e.To)
}

func (e *IllegalTransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}

// NotFoundError covers bookings, customers and vehicles.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
