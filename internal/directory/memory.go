package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"kaycrm/pkg/model"
	"kaycrm/pkg/sanitizer"
)

// MemoryDirectory is an in-process Directory for tests and the "memory"
// storage mode.
type MemoryDirectory struct {
	mu        sync.RWMutex
	customers map[string]model.Customer
	vehicles  map[string]model.Vehicle
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		customers: make(map[string]model.Customer),
		vehicles:  make(map[string]model.Vehicle),
	}
}

func (d *MemoryDirectory) AddCustomer(c model.Customer) {
	c.FullName = sanitizer.NormalizeName(c.FullName)
	c.Phone = sanitizer.NormalizePhone(c.Phone)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[c.ID] = c
}

func (d *MemoryDirectory) AddVehicle(v model.Vehicle) {
	v.Plate = sanitizer.NormalizePlate(v.Plate)
	v.Category = sanitizer.NormalizeLabel(v.Category)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.vehicles[v.ID] = v
}

func (d *MemoryDirectory) CustomerExists(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.customers[id]
	return ok, nil
}

func (d *MemoryDirectory) VehicleExists(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.vehicles[id]
	return ok, nil
}

func (d *MemoryDirectory) FindCustomerByPhone(_ context.Context, phone string) (*model.Customer, error) {
	normalized := sanitizer.NormalizePhone(phone)
	if normalized == "" {
		return nil, ErrNotFound
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.customers {
		if c.Phone == normalized {
			found := c
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// Seed is the file format accepted by LoadSeed.
type Seed struct {
	Customers []model.Customer `json:"customers"`
	Vehicles  []model.Vehicle  `json:"vehicles"`
}

// LoadSeed adds every customer and vehicle in the JSON document read from r.
// Nothing is added when any entry lacks an id.
func (d *MemoryDirectory) LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("failed to decode directory seed: %w", err)
	}
	for _, c := range seed.Customers {
		if c.ID == "" {
			return Seed{}, fmt.Errorf("directory seed: customer without id")
		}
	}
	for _, v := range seed.Vehicles {
		if v.ID == "" {
			return Seed{}, fmt.Errorf("directory seed: vehicle without id")
		}
	}

	for _, c := range seed.Customers {
		d.AddCustomer(c)
	}
	for _, v := range seed.Vehicles {
		d.AddVehicle(v)
	}
	return seed, nil
}
