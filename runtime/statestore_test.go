package runtime

import (
	"testing"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

func TestStateStoreGetSetRoundTrip(t *testing.T) {
	table := map[ir.StateId]ir.StateEntry{
		0: {Type: typesys.Sig(typesys.DomainFloat), Anchor: "counter"},
	}
	ss := NewStateStore(table)

	if got := ss.Get(0); got != 0.0 {
		t.Fatalf("initial value = %v, want zero float", got)
	}
	ss.Set(0, 7.0)
	if got := ss.Get(0); got != 7.0 {
		t.Fatalf("got %v, want 7.0", got)
	}
}

func TestMigrateCarriesOverMatchingAnchors(t *testing.T) {
	oldTable := map[ir.StateId]ir.StateEntry{
		5: {Type: typesys.Sig(typesys.DomainFloat), Anchor: "blockA.counter"},
	}
	old := NewStateStore(oldTable)
	old.Set(5, 99.0)

	newTable := map[ir.StateId]ir.StateEntry{
		1: {Type: typesys.Sig(typesys.DomainFloat), Anchor: "blockA.counter"},
		2: {Type: typesys.Sig(typesys.DomainFloat), Anchor: "blockB.counter"},
	}

	next, initialized := old.Migrate(newTable)

	if got := next.Get(1); got != 99.0 {
		t.Fatalf("expected anchor-matched state to carry over, got %v", got)
	}
	if got := next.Get(2); got != 0.0 {
		t.Fatalf("expected unmatched new state to zero-init, got %v", got)
	}

	if len(initialized) != 1 || initialized[0] != 2 {
		t.Fatalf("expected exactly state id 2 reported as newly initialized, got %v", initialized)
	}
}

func TestMigrateFullyCompatibleSwapReportsNoneInitialized(t *testing.T) {
	table := map[ir.StateId]ir.StateEntry{
		0: {Type: typesys.Sig(typesys.DomainFloat), Anchor: "same"},
	}
	old := NewStateStore(table)
	old.Set(0, 1.0)

	next, initialized := old.Migrate(table)
	if len(initialized) != 0 {
		t.Fatalf("expected no newly-initialized ids on an identical swap, got %v", initialized)
	}
	if got := next.Get(0); got != 1.0 {
		t.Fatalf("expected value preserved across identical swap, got %v", got)
	}
}
