package depgraph

import (
	"math"
	"sort"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

// CapacityRow reports one resource type's allocation against its configured
// total. Totals are policy input from configuration, never derived here.
type CapacityRow struct {
	ResourceType   string  `json:"resource_type"`
	Total          float64 `json:"total"`
	Allocated      float64 `json:"allocated"`
	Available      float64 `json:"available"`
	UtilizationPct float64 `json:"utilization_pct"`
	Overallocated  bool    `json:"overallocated"`
}

// CapacityOverview groups allocations by resource type and compares each
// against its configured total. Types configured but unallocated still
// report (fully available); types allocated but not configured report a
// zero total and show as overallocated. resourceType narrows the report to
// one type when non-empty. Rows come back sorted by resource type.
func CapacityOverview(allocs []*store.ResourceAllocation, totals map[string]float64, resourceType string) []CapacityRow {
	allocated := make(map[string]float64)
	for _, a := range allocs {
		allocated[a.ResourceType] += a.Amount
	}

	types := make(map[string]bool)
	for t := range totals {
		types[t] = true
	}
	for t := range allocated {
		types[t] = true
	}

	var rows []CapacityRow
	for t := range types {
		if resourceType != "" && t != resourceType {
			continue
		}
		row := CapacityRow{
			ResourceType: t,
			Total:        totals[t],
			Allocated:    round2(allocated[t]),
		}
		row.Available = math.Max(0, row.Total-row.Allocated)
		if row.Total > 0 {
			row.UtilizationPct = round2(row.Allocated / row.Total * 100)
		}
		row.Overallocated = row.Allocated > row.Total
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ResourceType < rows[j].ResourceType })
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
