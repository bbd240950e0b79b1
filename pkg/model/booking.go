package model

import (
	"fmt"
	"strings"
	"time"

	"kaycrm/pkg/daterange"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var AllStatuses = []Status{StatusPending, StatusActive, StatusCompleted, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("unknown booking status: %q", s)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// HoldsRange reports whether a booking in this status blocks its vehicle.
func (s Status) HoldsRange() bool {
	return s == StatusPending || s == StatusActive
}

func (s Status) String() string {
	return string(s)
}

type StatusChange struct {
	Status Status    `json:"status" bson:"status"`
	At     time.Time `json:"at" bson:"at"`
}

// Booking is created by the reservation coordinator and afterwards only
// changes through status transitions. Its date range is never edited.
type Booking struct {
	ID            string          `json:"id,omitempty" bson:"_id,omitempty"`
	BookingRef    string          `json:"booking_ref" bson:"booking_ref"`
	CustomerID    string          `json:"customer_id" bson:"customer_id"`
	VehicleID     string          `json:"vehicle_id" bson:"vehicle_id"`
	Range         daterange.Range `json:"range" bson:",inline"`
	Status        Status          `json:"status" bson:"status"`
	StatusHistory []StatusChange  `json:"status_history" bson:"status_history"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy so callers never share the history slice.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.StatusHistory = append([]StatusChange(nil), b.StatusHistory...)
	return &c
}

// Hold is the persisted view of a non-terminal booking's reservation.
type Hold struct {
	BookingID string
	VehicleID string
	Range     daterange.Range
}
