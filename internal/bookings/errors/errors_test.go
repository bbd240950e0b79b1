package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"kaycrm/pkg/daterange"
	"kaycrm/pkg/model"
)

func TestConflictError(t *testing.T) {
	err := &ConflictError{
		VehicleID: "V1",
		Requested: daterange.MustParse("2025-06-03", "2025-06-06"),
		Conflicts: []daterange.Range{daterange.MustParse("2025-06-01", "2025-06-05")},
	}

	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError should match ErrConflict")
	}
	if !strings.Contains(err.Error(), "[2025-06-01, 2025-06-05)") {
		t.Errorf("message should name the conflicting range, got %q", err.Error())
	}

	wrapped := fmt.Errorf("create: %w", err)
	var target *ConflictError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find the ConflictError through wrapping")
	}
	if len(target.Conflicts) != 1 {
		t.Errorf("expected 1 conflict, got %d", len(target.Conflicts))
	}
}

func TestIllegalTransitionError(t *testing.T) {
	err := &IllegalTransitionError{From: model.StatusCompleted, To: model.StatusActive}

	if !errors.Is(err, ErrIllegalTransition) {
		t.Error("IllegalTransitionError should match ErrIllegalTransition")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("IllegalTransitionError should not match ErrConflict")
	}
	if err.Error() != `cannot change booking status from "completed" to "active"` {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Resource: "vehicle", ID: "V9"}

	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should match ErrNotFound")
	}
	if err.Error() != `vehicle "V9" not found` {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestInvalidRangeIsShared(t *testing.T) {
	_, err := daterange.Parse("2025-06-05", "2025-06-01")
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("daterange errors should match ErrInvalidRange, got %v", err)
	}
}
