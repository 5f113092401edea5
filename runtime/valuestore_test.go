package runtime

import (
	"testing"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

func TestNewValueStoreZeroInitializesByDomain(t *testing.T) {
	types := ir.NewTypeTable()
	floatSlot := types.Alloc(typesys.Sig(typesys.DomainFloat))
	boolSlot := types.Alloc(typesys.Sig(typesys.DomainBoolean))
	vec2Slot := types.Alloc(typesys.Sig(typesys.DomainVec2))
	colorSlot := types.Alloc(typesys.Sig(typesys.DomainColor))

	vs := NewValueStore(types)

	if got := vs.Get(floatSlot); got != 0.0 {
		t.Fatalf("float slot zero value = %v, want 0.0", got)
	}
	if got := vs.Get(boolSlot); got != false {
		t.Fatalf("boolean slot zero value = %v, want false", got)
	}
	if got := vs.Get(vec2Slot); got != (Vec2{}) {
		t.Fatalf("vec2 slot zero value = %v, want Vec2{}", got)
	}
	if got := vs.Get(colorSlot); got != (Color{}) {
		t.Fatalf("color slot zero value = %v, want Color{}", got)
	}
}

func TestValueStoreGetSetRoundTrip(t *testing.T) {
	types := ir.NewTypeTable()
	slot := types.Alloc(typesys.Sig(typesys.DomainFloat))
	vs := NewValueStore(types)

	vs.Set(slot, 42.0)
	if got := vs.GetFloat(slot); got != 42.0 {
		t.Fatalf("GetFloat = %v, want 42.0", got)
	}
}

func TestValueStoreNoSlotIsSafeNoOp(t *testing.T) {
	types := ir.NewTypeTable()
	vs := NewValueStore(types)

	vs.Set(ir.NoSlot(), 1.0) // must not panic
	if got := vs.Get(ir.NoSlot()); got != nil {
		t.Fatalf("Get(NoSlot) = %v, want nil", got)
	}
}

func TestConstValueDisambiguatesVec4FromColor(t *testing.T) {
	raw := [4]float64{0.1, 0.2, 0.3, 0.4}

	vec4 := constValue(typesys.Sig(typesys.DomainVec4), raw)
	if _, ok := vec4.(Vec4); !ok {
		t.Fatalf("expected Vec4, got %T", vec4)
	}

	col := constValue(typesys.Sig(typesys.DomainColor), raw)
	if _, ok := col.(Color); !ok {
		t.Fatalf("expected Color, got %T", col)
	}
}

func TestConstValuePassesThroughUnknownDomains(t *testing.T) {
	got := constValue(typesys.Sig(typesys.DomainFloat), 3.0)
	if got != 3.0 {
		t.Fatalf("got %v, want 3.0 passed through unchanged", got)
	}
}
