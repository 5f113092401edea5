package runtime

import (
	"testing"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// S3 (spec.md §8): DomainN{n=9} -> PositionMapGrid{rows=3, cols=3, spacing=10,
// origin=(0,0)} must produce exactly this interleaved [x,y] sequence.
func TestFieldEvaluatorMaterializesGridPositions(t *testing.T) {
	b := ir.NewIRBuilder()
	domainID, _ := b.AllocDomain(9)
	fieldID := b.Field.PosGrid(domainID, 3, 3, 10, 10, 0, 0)

	pool := NewBufferPool()
	scope := NewScope(pool)
	defer scope.Release()

	fe := newFieldEvaluator(b.Field, b.Consts, scope, func(int) any { return 0.0 })
	buf := fe.materialize(fieldID, ir.FormatVec2F, 9)

	want := []Vec2{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0},
		{X: 0, Y: 10}, {X: 10, Y: 10}, {X: 20, Y: 10},
		{X: 0, Y: 20}, {X: 10, Y: 20}, {X: 20, Y: 20},
	}
	if len(buf.Values) != len(want) {
		t.Fatalf("got %d positions, want %d", len(buf.Values), len(want))
	}
	for i, v := range buf.Values {
		got, ok := v.(Vec2)
		if !ok || got != want[i] {
			t.Fatalf("position %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestFieldEvaluatorMemoizesByNodeID(t *testing.T) {
	b := ir.NewIRBuilder()
	domainID, _ := b.AllocDomain(4)
	fieldID := b.Field.Hash01ByID(domainID, 7)

	pool := NewBufferPool()
	scope := NewScope(pool)
	defer scope.Release()

	fe := newFieldEvaluator(b.Field, b.Consts, scope, func(int) any { return 0.0 })
	first := fe.materialize(fieldID, ir.FormatF32, 4)
	second := fe.materialize(fieldID, ir.FormatF32, 4)

	if first != second {
		t.Fatalf("expected a repeated materialize of the same node to return the memoized buffer")
	}
}

func TestFieldEvaluatorHash01ByIDIsDeterministicAndBounded(t *testing.T) {
	b := ir.NewIRBuilder()
	domainID, _ := b.AllocDomain(5)
	fieldID := b.Field.Hash01ByID(domainID, 42)

	pool := NewBufferPool()

	run := func() []float64 {
		scope := NewScope(pool)
		defer scope.Release()
		fe := newFieldEvaluator(b.Field, b.Consts, scope, func(int) any { return 0.0 })
		buf := fe.materialize(fieldID, ir.FormatF32, 5)
		out := make([]float64, len(buf.Values))
		for i, v := range buf.Values {
			out[i] = v.(float64)
		}
		return out
	}

	a := run()
	b2 := run()
	for i := range a {
		if a[i] != b2[i] {
			t.Fatalf("hash01 element %d not stable across runs: %v vs %v", i, a[i], b2[i])
		}
		if a[i] < 0 || a[i] >= 1 {
			t.Fatalf("hash01 element %d = %v, want in [0,1)", i, a[i])
		}
	}
}

// FieldBroadcastSig routes through the evalSig callback passed in at
// construction, the same hook ScheduleExecutor.evalSig plugs into.
func TestFieldEvaluatorBroadcastsSignalAcrossDomain(t *testing.T) {
	b := ir.NewIRBuilder()
	domainID, _ := b.AllocDomain(3)
	sigRef := b.SigConst(typesys.Sig(typesys.DomainFloat), 4.5)
	fieldRef := b.FieldBroadcast(domainID, sigRef)

	pool := NewBufferPool()
	scope := NewScope(pool)
	defer scope.Release()

	evalSig := func(id int) any {
		n := b.Sig.Node(id)
		c := b.Consts.Get(n.ConstID)
		return constValue(c.Type, c.Value)
	}
	fe := newFieldEvaluator(b.Field, b.Consts, scope, evalSig)
	buf := fe.materialize(fieldRef.ID, ir.FormatF32, 3)

	for i, v := range buf.Values {
		if v.(float64) != 4.5 {
			t.Fatalf("element %d = %v, want 4.5 broadcast across every element", i, v)
		}
	}
}
