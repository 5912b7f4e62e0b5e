package store

import (
	"testing"
)

func TestInitiativeStatusValues(t *testing.T) {
	statuses := []InitiativeStatus{
		InitiativeProposed, InitiativeActive, InitiativeOnHold,
		InitiativeDone, InitiativeCancelled,
	}
	expected := []string{"proposed", "active", "on_hold", "done", "cancelled"}
	for i, s := range statuses {
		if string(s) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestGateStatusValues(t *testing.T) {
	statuses := []GateStatus{GateGo, GateCautious, GateRisk}
	expected := []string{"go", "cautious", "risk"}
	for i, s := range statuses {
		if string(s) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], s)
		}
	}
}

func TestInitiativeFilterDefaults(t *testing.T) {
	f := InitiativeFilter{}
	if f.Limit != 0 {
		t.Errorf("expected 0 default limit, got %d", f.Limit)
	}
	if f.Status != nil {
		t.Error("expected nil status filter")
	}
	if f.Owner != "" {
		t.Error("expected empty owner filter")
	}
}

func TestEdgeKindValues(t *testing.T) {
	kinds := []EdgeKind{EdgeBlocks, EdgeRequires, EdgeRelates}
	expected := []string{"blocks", "requires", "relates"}
	for i, k := range kinds {
		if string(k) != expected[i] {
			t.Errorf("expected %s, got %s", expected[i], k)
		}
	}
}
