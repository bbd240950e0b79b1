// Package directory answers existence questions about customers and vehicles
// owned by the rest of the CRM. Nothing here takes part in booking rules.
package directory

import (
	"context"
	"errors"

	"kaycrm/pkg/model"
)

const (
	CustomersCollection = "Customers"
	VehiclesCollection  = "Vehicles"
)

var ErrNotFound = errors.New("directory entry not found")

type CustomerLookup interface {
	CustomerExists(ctx context.Context, id string) (bool, error)
}

type VehicleLookup interface {
	VehicleExists(ctx context.Context, id string) (bool, error)
}

type Directory interface {
	CustomerLookup
	VehicleLookup
	// FindCustomerByPhone accepts any formatting of the number; it is
	// normalized to E.164 before matching.
	FindCustomerByPhone(ctx context.Context, phone string) (*model.Customer, error)
}
