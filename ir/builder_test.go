package ir

import (
	"testing"

	"github.com/sarchlab/patchflow/typesys"
)

func TestSigTypeOfComparisonYieldsBoolean(t *testing.T) {
	b := NewIRBuilder()

	a := b.SigConst(typesys.Sig(typesys.DomainFloat), 1.0)
	c := b.SigConst(typesys.Sig(typesys.DomainFloat), 2.0)
	gt := b.SigZip(OpGT, a, c)

	got := b.SigTypeOf(gt.ID)
	if !got.Equal(typesys.Sig(typesys.DomainBoolean)) {
		t.Fatalf("SigTypeOf(gt) = %v; want boolean", got)
	}
}

func TestSigTypeOfArithmeticPreservesFirstOperandType(t *testing.T) {
	b := NewIRBuilder()

	a := b.SigConst(typesys.Sig(typesys.DomainVec2), [2]float64{1, 2})
	c := b.SigConst(typesys.Sig(typesys.DomainVec2), [2]float64{3, 4})
	sum := b.SigZip(OpAdd, a, c)

	got := b.SigTypeOf(sum.ID)
	if !got.Equal(typesys.Sig(typesys.DomainVec2)) {
		t.Fatalf("SigTypeOf(sum) = %v; want signal:vec2", got)
	}
}

func TestStateReadTypeMatchesAllocatedType(t *testing.T) {
	b := NewIRBuilder()

	id := b.AllocStateId(typesys.Sig(typesys.DomainFloat), "test.counter")
	read := b.StateRead(id)

	got := b.SigTypeOf(read.ID)
	if !got.Equal(typesys.Sig(typesys.DomainFloat)) {
		t.Fatalf("SigTypeOf(StateRead) = %v; want signal:float", got)
	}

	table := b.StateTable()
	entry, ok := table[id]
	if !ok {
		t.Fatalf("expected state id %d in StateTable", id)
	}
	if entry.Anchor != "test.counter" {
		t.Fatalf("got anchor %q, want %q", entry.Anchor, "test.counter")
	}
}

func TestFieldBroadcastTypeFollowsSourceSignal(t *testing.T) {
	b := NewIRBuilder()

	domainID, _ := b.AllocDomain(16)
	sig := b.SigConst(typesys.Sig(typesys.DomainColor), [4]float64{1, 1, 1, 1})
	field := b.FieldBroadcast(domainID, sig)

	got := b.FieldTypeOf(field.ID)
	if !got.Equal(typesys.Field(typesys.DomainColor)) {
		t.Fatalf("FieldTypeOf(broadcast) = %v; want field:color", got)
	}
	if b.DomainSize(domainID) != 16 {
		t.Fatalf("DomainSize(%d) = %d; want 16", domainID, b.DomainSize(domainID))
	}
	if got := b.DomainSizes()[domainID]; got != 16 {
		t.Fatalf("DomainSizes()[%d] = %d; want 16", domainID, got)
	}
}
