package runtime

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/debugtrace"
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/render"
)

// Sink receives one RenderFrameIR per tick. The host renderer implements
// this.
type Sink interface {
	Present(frame *render.FrameIR)
}

// Component wraps a ScheduleExecutor in an akita TickingComponent so a
// CompiledProgram can be driven by the same sim.Engine/sim.Freq model the
// rest of the pack uses (spec.md §5's "host drives frames" — here the host
// is an akita engine rather than requestAnimationFrame).
type Component struct {
	*sim.TickingComponent

	executor *ScheduleExecutor
	sink     Sink
}

// Tick advances one frame. tAbsMs is derived from the engine's virtual
// time, converting seconds to milliseconds; madeProgress is always true
// while a schedule is loaded, since every frame produces a render output
// regardless of whether any signal actually changed (spec.md §4.9: frames
// are atomic and unconditional, not data-driven like the teacher's PE
// ticks).
func (c *Component) Tick(now sim.VTimeInSec) (madeProgress bool) {
	tAbsMs := float64(now) * 1000
	frame, err := c.executor.RunFrame(tAbsMs)
	if err != nil {
		return false
	}
	if c.sink != nil {
		c.sink.Present(frame)
	}
	return true
}

// Swap hot-swaps the running program for a newly compiled one between
// frames (spec.md §4.13). It migrates state by anchor and returns the list
// of state ids that had no match in the old table (a partial swap); an
// empty (nil) result means a fully compatible swap.
func (c *Component) Swap(program *compiler.CompiledProgram) []ir.StateId {
	newStates, migrated := c.executor.states.Migrate(program.StateTable)
	c.executor.program = program
	c.executor.states = newStates
	c.executor.values = NewValueStore(program.TypeTable)
	c.executor.time = NewTimeState()
	return migrated
}

// ExecutorBuilder constructs a Component, the same fluent
// `XBuilder{}.WithY(y).Build(name)` shape as api.DriverBuilder and
// config.DeviceBuilder.
type ExecutorBuilder struct {
	engine         sim.Engine
	freq           sim.Freq
	program        *compiler.CompiledProgram
	sink           Sink
	trace          *debugtrace.Controller
	customReducers map[string]CustomReducerFn
	nanCounter     func(slot ir.ValueSlot)
}

// NewExecutorBuilder creates a builder with no engine/program set yet.
func NewExecutorBuilder() ExecutorBuilder { return ExecutorBuilder{} }

// WithEngine sets the driving akita engine.
func (b ExecutorBuilder) WithEngine(engine sim.Engine) ExecutorBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the tick frequency the engine drives Tick at.
func (b ExecutorBuilder) WithFreq(freq sim.Freq) ExecutorBuilder {
	b.freq = freq
	return b
}

// WithProgram sets the compiled program to execute.
func (b ExecutorBuilder) WithProgram(program *compiler.CompiledProgram) ExecutorBuilder {
	b.program = program
	return b
}

// WithSink sets the render frame consumer.
func (b ExecutorBuilder) WithSink(sink Sink) ExecutorBuilder {
	b.sink = sink
	return b
}

// WithTrace attaches a debug trace controller; if omitted, a disabled
// controller is created so DebugProbe steps are still safe to execute.
func (b ExecutorBuilder) WithTrace(trace *debugtrace.Controller) ExecutorBuilder {
	b.trace = trace
	return b
}

// WithCustomReducer registers the runtime-side fold function for one
// CombineCustom bus reducer id.
func (b ExecutorBuilder) WithCustomReducer(id string, fn CustomReducerFn) ExecutorBuilder {
	if b.customReducers == nil {
		b.customReducers = make(map[string]CustomReducerFn)
	}
	b.customReducers[id] = fn
	return b
}

// WithNaNCounter sets the callback invoked whenever a SigEval step produces
// a non-finite value, the hook health.Monitor attaches to (spec.md §7).
func (b ExecutorBuilder) WithNaNCounter(fn func(slot ir.ValueSlot)) ExecutorBuilder {
	b.nanCounter = fn
	return b
}

// Build creates the Component.
func (b ExecutorBuilder) Build(name string) *Component {
	if b.program == nil {
		panic("runtime: ExecutorBuilder.Build called without WithProgram")
	}
	trace := b.trace
	if trace == nil {
		trace = debugtrace.NewController(0)
	}

	ex := &ScheduleExecutor{
		program:        b.program,
		values:         NewValueStore(b.program.TypeTable),
		states:         NewStateStore(b.program.StateTable),
		pool:           NewBufferPool(),
		time:           NewTimeState(),
		trace:          trace,
		customReducers: b.customReducers,
		nanCounter:     b.nanCounter,
	}

	c := &Component{executor: ex, sink: b.sink}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	return c
}
