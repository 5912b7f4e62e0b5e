package depgraph

import (
	"testing"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

func alloc(resourceType string, amount float64) *store.ResourceAllocation {
	return &store.ResourceAllocation{ResourceType: resourceType, Amount: amount}
}

func TestCapacityOverview(t *testing.T) {
	totals := map[string]float64{"eng_weeks": 100, "budget_k": 500}
	allocs := []*store.ResourceAllocation{
		alloc("eng_weeks", 30),
		alloc("eng_weeks", 50),
	}

	rows := CapacityOverview(allocs, totals, "")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Sorted by resource type.
	if rows[0].ResourceType != "budget_k" || rows[1].ResourceType != "eng_weeks" {
		t.Errorf("unexpected order: %s, %s", rows[0].ResourceType, rows[1].ResourceType)
	}

	budget := rows[0]
	if budget.Allocated != 0 || budget.Available != 500 || budget.UtilizationPct != 0 || budget.Overallocated {
		t.Errorf("unexpected budget row: %+v", budget)
	}

	eng := rows[1]
	if eng.Allocated != 80 {
		t.Errorf("expected 80 allocated, got %f", eng.Allocated)
	}
	if eng.Available != 20 {
		t.Errorf("expected 20 available, got %f", eng.Available)
	}
	if eng.UtilizationPct != 80 {
		t.Errorf("expected 80%% utilization, got %f", eng.UtilizationPct)
	}
	if eng.Overallocated {
		t.Error("80/100 is not overallocated")
	}
}

func TestCapacityOverallocated(t *testing.T) {
	rows := CapacityOverview(
		[]*store.ResourceAllocation{alloc("eng_weeks", 120)},
		map[string]float64{"eng_weeks": 100},
		"",
	)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if !row.Overallocated {
		t.Error("expected overallocated")
	}
	if row.Available != 0 {
		t.Errorf("available clamps at 0, got %f", row.Available)
	}
	if row.UtilizationPct != 120 {
		t.Errorf("expected 120%% utilization, got %f", row.UtilizationPct)
	}
}

func TestCapacityUnconfiguredType(t *testing.T) {
	rows := CapacityOverview(
		[]*store.ResourceAllocation{alloc("gpu_hours", 10)},
		map[string]float64{"eng_weeks": 100},
		"gpu_hours",
	)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Total != 0 {
		t.Errorf("expected zero total, got %f", row.Total)
	}
	if !row.Overallocated {
		t.Error("any allocation against a zero total is overallocated")
	}
	if row.UtilizationPct != 0 {
		t.Errorf("utilization undefined for zero total, got %f", row.UtilizationPct)
	}
}

func TestCapacityFilter(t *testing.T) {
	totals := map[string]float64{"eng_weeks": 100, "budget_k": 500}
	rows := CapacityOverview(nil, totals, "eng_weeks")
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ResourceType != "eng_weeks" {
		t.Errorf("expected eng_weeks, got %s", rows[0].ResourceType)
	}
}

func TestCapacityRounding(t *testing.T) {
	rows := CapacityOverview(
		[]*store.ResourceAllocation{alloc("budget_k", 0.1), alloc("budget_k", 0.2)},
		map[string]float64{"budget_k": 1},
		"",
	)
	if rows[0].Allocated != 0.3 {
		t.Errorf("expected 0.3, got %v", rows[0].Allocated)
	}
	if rows[0].UtilizationPct != 30 {
		t.Errorf("expected 30%%, got %v", rows[0].UtilizationPct)
	}
}
