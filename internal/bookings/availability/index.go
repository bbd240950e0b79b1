// Package availability tracks which date ranges each vehicle currently has
// reserved by non-terminal bookings.
package availability

import (
	"errors"
	"slices"
	"sort"
	"sync"

	bookingserrors "kaycrm/internal/bookings/errors"
	"kaycrm/pkg/daterange"
	"kaycrm/pkg/model"
)

// Index maps vehicle id to its held ranges. Each vehicle has its own lock;
// the index-wide mutex only guards shard lookup.
type Index struct {
	mu       sync.Mutex
	vehicles map[string]*shard
}

// shard keeps held ranges sorted by start. They are pairwise disjoint, so
// ends are sorted as well.
type shard struct {
	mu   sync.RWMutex
	held []daterange.Range
}

func NewIndex() *Index {
	return &Index{vehicles: make(map[string]*shard)}
}

func (i *Index) lookup(vehicleID string) *shard {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.vehicles[vehicleID]
}

func (i *Index) lookupOrCreate(vehicleID string) *shard {
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.vehicles[vehicleID]
	if !ok {
		s = &shard{}
		i.vehicles[vehicleID] = s
	}
	return s
}

// IsAvailable reports whether r overlaps none of the vehicle's held ranges.
func (i *Index) IsAvailable(vehicleID string, r daterange.Range) bool {
	s := i.lookup(vehicleID)
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conflicts(r)) == 0
}

// Reserve adds r to the vehicle's held set unless it overlaps an existing
// hold, in which case a *ConflictError naming every overlap is returned.
func (i *Index) Reserve(vehicleID string, r daterange.Range) error {
	s := i.lookupOrCreate(vehicleID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if conflicts := s.conflicts(r); len(conflicts) > 0 {
		return &bookingserrors.ConflictError{
			VehicleID: vehicleID,
			Requested: r,
			Conflicts: conflicts,
		}
	}
	pos := sort.Search(len(s.held), func(k int) bool {
		return !s.held[k].Start.Before(r.Start)
	})
	s.held = slices.Insert(s.held, pos, r)
	return nil
}

// Release removes exactly r from the vehicle's held set. Releasing a range
// that is not held is a no-op so retries stay harmless.
func (i *Index) Release(vehicleID string, r daterange.Range) {
	s := i.lookup(vehicleID)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := sort.Search(len(s.held), func(k int) bool {
		return !s.held[k].Start.Before(r.Start)
	})
	if pos < len(s.held) && s.held[pos].Equal(r) {
		s.held = slices.Delete(s.held, pos, pos+1)
	}
}

// Held returns a sorted copy of the vehicle's held ranges.
func (i *Index) Held(vehicleID string) []daterange.Range {
	s := i.lookup(vehicleID)
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.held)
}

// Snapshot copies every vehicle's held ranges. Vehicles without holds are
// omitted. Each vehicle is read consistently; the whole map is not.
func (i *Index) Snapshot() map[string][]daterange.Range {
	i.mu.Lock()
	ids := make([]string, 0, len(i.vehicles))
	for id := range i.vehicles {
		ids = append(ids, id)
	}
	i.mu.Unlock()

	out := make(map[string][]daterange.Range, len(ids))
	for _, id := range ids {
		if held := i.Held(id); len(held) > 0 {
			out[id] = held
		}
	}
	return out
}

// Load reserves every persisted hold. Holds that overlap an already loaded
// one are skipped and reported together in the returned error.
func (i *Index) Load(holds []model.Hold) error {
	var errs []error
	for _, h := range holds {
		if err := i.Reserve(h.VehicleID, h.Range); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// conflicts must be called with s.mu held.
func (s *shard) conflicts(r daterange.Range) []daterange.Range {
	// First hold ending after r starts; earlier holds cannot overlap.
	first := sort.Search(len(s.held), func(k int) bool {
		return r.Start.Before(s.held[k].End)
	})
	var out []daterange.Range
	for k := first; k < len(s.held) && s.held[k].Start.Before(r.End); k++ {
		out = append(out, s.held[k])
	}
	return out
}
