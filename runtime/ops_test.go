package runtime

import (
	"math"
	"testing"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

func TestApplyBinaryAddBroadcastsScalarOverVec2(t *testing.T) {
	got := applyBinary(ir.OpAdd, Vec2{X: 1, Y: 2}, 10.0)
	want := Vec2{X: 11, Y: 12}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestApplyBinaryDivByZeroYieldsSignedInfinity(t *testing.T) {
	got := applyBinary(ir.OpDiv, 1.0, 0.0)
	f, ok := got.(float64)
	if !ok || !math.IsInf(f, 1) {
		t.Fatalf("got %v, want +Inf", got)
	}

	got = applyBinary(ir.OpDiv, -1.0, 0.0)
	f, ok = got.(float64)
	if !ok || !math.IsInf(f, -1) {
		t.Fatalf("got %v, want -Inf", got)
	}
}

func TestApplyBinaryStep(t *testing.T) {
	if got := applyBinary(ir.OpStep, 0.5, 0.3); got != 0.0 {
		t.Fatalf("step(edge=0.5, x=0.3) = %v, want 0", got)
	}
	if got := applyBinary(ir.OpStep, 0.5, 0.7); got != 1.0 {
		t.Fatalf("step(edge=0.5, x=0.7) = %v, want 1", got)
	}
}

func TestApplyMix(t *testing.T) {
	if got := applyMix(true, "a", "b"); got != "a" {
		t.Fatalf("applyMix(true, a, b) = %v, want a", got)
	}
	if got := applyMix(false, "a", "b"); got != "b" {
		t.Fatalf("applyMix(false, a, b) = %v, want b", got)
	}
}

func TestApplyUnaryFractAndClamp01(t *testing.T) {
	if got := applyUnary(ir.OpFract, 2.75); got != 0.75 {
		t.Fatalf("fract(2.75) = %v, want 0.75", got)
	}
	if got := applyUnary(ir.OpClamp01, 1.5); got != 1.0 {
		t.Fatalf("clamp01(1.5) = %v, want 1", got)
	}
	if got := applyUnary(ir.OpClamp01, -0.5); got != 0.0 {
		t.Fatalf("clamp01(-0.5) = %v, want 0", got)
	}
}

func TestApplyBinaryRotate2DQuarterTurn(t *testing.T) {
	got := applyBinary(ir.OpRotate2D, Vec2{X: 1, Y: 0}, math.Pi/2)
	v, ok := got.(Vec2)
	if !ok {
		t.Fatalf("expected Vec2 result, got %T", got)
	}
	if math.Abs(v.X) > 1e-9 || math.Abs(v.Y-1) > 1e-9 {
		t.Fatalf("rotate2d((1,0), pi/2) = %v, want ~(0,1)", v)
	}
}

func TestHueShiftPreservesAlphaAndWrapsHue(t *testing.T) {
	red := Color{R: 1, G: 0, B: 0, A: 0.5}
	got := hueShift(red, 120)
	if math.Abs(got.A-0.5) > 1e-9 {
		t.Fatalf("hueShift changed alpha: got %v", got.A)
	}
	// Shifting red's hue (0deg) by 120deg should land near pure green.
	if got.G < 0.9 || got.R > 0.1 || got.B > 0.1 {
		t.Fatalf("hueShift(red, 120) = %v, want approximately green", got)
	}
}

func TestReduceFloats(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	if got := reduceFloats(typesys.ReduceSum, vals); got != 10 {
		t.Fatalf("sum = %v, want 10", got)
	}
	if got := reduceFloats(typesys.ReduceAvg, vals); got != 2.5 {
		t.Fatalf("avg = %v, want 2.5", got)
	}
	if got := reduceFloats(typesys.ReduceMin, vals); got != 1 {
		t.Fatalf("min = %v, want 1", got)
	}
	if got := reduceFloats(typesys.ReduceMax, vals); got != 4 {
		t.Fatalf("max = %v, want 4", got)
	}
	if got := reduceFloats(typesys.ReduceSum, nil); got != 0 {
		t.Fatalf("reduce of empty slice = %v, want 0", got)
	}
}
