package runtime

import (
	"math"
	"testing"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
)

// These are the seeded end-to-end scenarios named spec.md §8's "testable
// properties": S1, S2, S4, S5. Each compiles a small patch through the real
// compiler pipeline, drives it with ExecutorBuilder+RunFrame exactly as a
// host would, and checks the numbers the scenario names.

func mustCompile(t *testing.T, patch *patchgraph.Patch) *compiler.CompiledProgram {
	t.Helper()
	reg := blocks.NewRegistry()
	blocks.RegisterBuiltins(reg)
	xforms := transform.NewRegistry()
	transform.RegisterBuiltinAdapters(xforms)
	transform.RegisterBuiltinLenses(xforms)

	program, err := compiler.Compile(patch, reg, xforms, nil)
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	return program
}

func newTestComponent(program *compiler.CompiledProgram) *Component {
	return NewExecutorBuilder().
		WithEngine(sim.NewSerialEngine()).
		WithFreq(1 * sim.GHz).
		WithProgram(program).
		Build("testExecutor")
}

// S1 — Time-only finite: frames at tAbsMs = 0, 500, 1000, 1500 must read
// tModelMs 0, 500, 1000, 1000 (clamped to the declared duration).
func TestRunFrameS1TimeOnlyFinite(t *testing.T) {
	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Finite", Params: map[string]any{"durationMs": 1000.0}},
		},
	}
	program := mustCompile(t, patch)
	comp := newTestComponent(program)
	slot := program.DebugIndex["clock#tModelMs"]

	cases := []struct{ tAbsMs, want float64 }{
		{0, 0}, {500, 500}, {1000, 1000}, {1500, 1000},
	}
	for _, tc := range cases {
		frame, err := comp.executor.RunFrame(tc.tAbsMs)
		if err != nil {
			t.Fatalf("RunFrame(%v): %v", tc.tAbsMs, err)
		}
		if frame.TModelMs != tc.want {
			t.Fatalf("at tAbsMs=%v: frame.TModelMs = %v, want %v", tc.tAbsMs, frame.TModelMs, tc.want)
		}
		if got := comp.executor.values.GetFloat(slot); got != tc.want {
			t.Fatalf("at tAbsMs=%v: probed tModelMs = %v, want %v", tc.tAbsMs, got, tc.want)
		}
	}
}

// S2 — Oscillator+Scale: InfiniteTimeRoot{1000} -> PhaseClock{period=1000}
// -> Oscillator{sine} -> scale{scale=5,offset=10}. At tAbsMs=250, the probe
// must read 15 (5*sin(2*pi*0.25)+10). This is the exact regression case for
// evalSig's canonical-slot reads: before threading ex.canonical through,
// every operand read of tAbsMs stubbed to zero, so phase stuck at
// fract(0/1000)=0 and this always evaluated to 10.
func TestRunFrameS2OscillatorPhaseScale(t *testing.T) {
	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Infinite"},
			{ID: "pclock", Type: "PhaseClock", Params: map[string]any{"period": 1000.0}},
			{ID: "osc", Type: "Oscillator", Params: map[string]any{"shape": "sine"}},
			{ID: "probe", Type: "IntegrateBlock"},
		},
		Edges: []patchgraph.Edge{
			{ID: "e1", From: patchgraph.PortEndpoint("clock", "tAbsMs"), To: patchgraph.PortEndpoint("pclock", "tAbsMs"), Enabled: true},
			{ID: "e2", From: patchgraph.PortEndpoint("pclock", "phase"), To: patchgraph.PortEndpoint("osc", "phase"), Enabled: true},
			{
				ID: "e3", From: patchgraph.PortEndpoint("osc", "value"), To: patchgraph.PortEndpoint("probe", "in"),
				Transforms: []patchgraph.TransformStep{{ID: "scale", Params: map[string]any{"scale": 5.0, "offset": 10.0}}},
				Enabled:    true,
			},
		},
	}
	program := mustCompile(t, patch)
	comp := newTestComponent(program)

	// probe is a fresh IntegrateBlock with zero-initialized state, so its
	// first frame's output equals its input exactly: 0 + scaled(osc value).
	if _, err := comp.executor.RunFrame(250); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}

	want := 5*math.Sin(2*math.Pi*0.25) + 10
	got := comp.executor.values.GetFloat(program.DebugIndex["probe#out"])
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("probe#out at tAbsMs=250 = %v, want %v (±1e-6)", got, want)
	}
}

// S4 — Bus sum combine: two ConstFloat publishers (0.3, 0.7) on a sum bus;
// a listener reads it. Buses deliver last frame's combined value (the
// DESIGN.md "bus reads are last-frame-register reads" decision), so the
// listener only observes 1.0 starting on the second frame.
func TestRunFrameS4BusSumCombine(t *testing.T) {
	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Infinite"},
			{ID: "a", Type: "ConstFloat", Params: map[string]any{"value": 0.3}},
			{ID: "c", Type: "ConstFloat", Params: map[string]any{"value": 0.7}},
			{ID: "listener", Type: "IntegrateBlock"},
		},
		Buses: []patchgraph.Bus{
			{ID: "energy", Name: "energy", Type: "signal:float", CombineMode: "sum"},
		},
		Edges: []patchgraph.Edge{
			{ID: "pub1", From: patchgraph.PortEndpoint("a", "out"), To: patchgraph.BusEndpoint("energy"), Enabled: true},
			{ID: "pub2", From: patchgraph.PortEndpoint("c", "out"), To: patchgraph.BusEndpoint("energy"), Enabled: true},
			{ID: "sub1", From: patchgraph.BusEndpoint("energy"), To: patchgraph.PortEndpoint("listener", "in"), Enabled: true},
		},
	}
	program := mustCompile(t, patch)
	comp := newTestComponent(program)
	slot := program.DebugIndex["listener#out"]

	if _, err := comp.executor.RunFrame(0); err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	if got := comp.executor.values.GetFloat(slot); got != 0 {
		t.Fatalf("frame 1 listener#out = %v, want 0 (bus register not yet written)", got)
	}

	if _, err := comp.executor.RunFrame(16); err != nil {
		t.Fatalf("frame 2: %v", err)
	}
	if got := comp.executor.values.GetFloat(slot); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("frame 2 listener#out = %v, want 1.0 (0.3+0.7 combined on frame 1)", got)
	}
}

// S5 — Cycle with state: IntegrateBlock fed entirely by its own output
// through a +1 offset lens on the feedback edge. Compile must succeed (a
// stateful block legalizes the self-loop), and successive frames must
// accumulate: out_n = 2*out_{n-1} + 1, starting from a zero-initialized
// state on the first frame.
func TestRunFrameS5CycleWithState(t *testing.T) {
	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Infinite"},
			{ID: "integ", Type: "IntegrateBlock"},
		},
		Edges: []patchgraph.Edge{
			{
				ID: "loop", From: patchgraph.PortEndpoint("integ", "out"), To: patchgraph.PortEndpoint("integ", "in"),
				Transforms: []patchgraph.TransformStep{{ID: "scale", Params: map[string]any{"scale": 1.0, "offset": 1.0}}},
				Enabled:    true,
			},
		},
	}
	program := mustCompile(t, patch)
	comp := newTestComponent(program)
	slot := program.DebugIndex["integ#out"]

	want := []float64{1, 3, 7, 15}
	for i, tAbsMs := range []float64{0, 16, 32, 48} {
		if _, err := comp.executor.RunFrame(tAbsMs); err != nil {
			t.Fatalf("frame %d: %v", i+1, err)
		}
		if got := comp.executor.values.GetFloat(slot); got != want[i] {
			t.Fatalf("frame %d integ#out = %v, want %v", i+1, got, want[i])
		}
	}
}
