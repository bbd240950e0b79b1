// Package audit compares the in-memory availability index with the holds
// persisted in storage and reports drift.
package audit

import (
	"context"
	"fmt"
	"slices"

	"kaycrm/pkg/daterange"
	"kaycrm/pkg/logger"
	"kaycrm/pkg/model"
)

type HeldSource interface {
	FindHeld(ctx context.Context) ([]model.Hold, error)
}

type IndexSnapshot interface {
	Snapshot() map[string][]daterange.Range
}

// Drift is one range the index and storage disagree on.
type Drift struct {
	VehicleID string
	Range     daterange.Range
	BookingID string
}

type Report struct {
	Checked int
	// Missing holds are persisted but absent from the index.
	Missing []Drift
	// Stale ranges are in the index without a persisted hold.
	Stale []Drift
}

func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0
}

type Auditor struct {
	source HeldSource
	index  IndexSnapshot
	log    *logger.Logger
}

func NewAuditor(source HeldSource, index IndexSnapshot, log *logger.Logger) *Auditor {
	return &Auditor{source: source, index: index, log: log}
}

// Run takes one snapshot of each side. Mutations in flight while it runs
// can show up as drift, so results are logged, never repaired.
func (a *Auditor) Run(ctx context.Context) (Report, error) {
	snapshot := a.index.Snapshot()

	holds, err := a.source.FindHeld(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load persisted holds: %w", err)
	}

	report := Report{Checked: len(holds)}
	persisted := make(map[string][]daterange.Range, len(holds))
	for _, h := range holds {
		persisted[h.VehicleID] = append(persisted[h.VehicleID], h.Range)
		if !slices.Contains(snapshot[h.VehicleID], h.Range) {
			report.Missing = append(report.Missing, Drift{VehicleID: h.VehicleID, Range: h.Range, BookingID: h.BookingID})
		}
	}
	for vehicleID, held := range snapshot {
		for _, r := range held {
			if !slices.Contains(persisted[vehicleID], r) {
				report.Stale = append(report.Stale, Drift{VehicleID: vehicleID, Range: r})
			}
		}
	}

	a.logReport(report)
	return report, nil
}

func (a *Auditor) logReport(report Report) {
	if report.Clean() {
		a.log.Debug("Availability index audit clean", "holds", report.Checked)
		return
	}

	for _, d := range report.Missing {
		a.log.Warn("Persisted hold missing from availability index",
			"vehicle_id", d.VehicleID,
			"booking_id", d.BookingID,
			"range", d.Range.String(),
		)
	}
	for _, d := range report.Stale {
		a.log.Warn("Availability index holds a range with no persisted booking",
			"vehicle_id", d.VehicleID,
			"range", d.Range.String(),
		)
	}
	a.log.Warn("Availability index audit found drift",
		"holds", report.Checked,
		"missing", len(report.Missing),
		"stale", len(report.Stale),
	)
}
