package runtime

import (
	"strings"

	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/debugtrace"
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/render"
)

// CustomReducerFn folds two accumulated values for a CombineCustom bus, the
// runtime-side half of a custom reducer the compiler only validated by
// presence (spec.md §4.1).
type CustomReducerFn func(a, b float64) float64

// ScheduleExecutor runs a CompiledProgram's Schedule once per frame,
// producing a render.FrameIR (spec.md §4.9). It owns every per-frame
// resource: ValueStore, StateStore, BufferPool, and TimeState, plus the
// debug trace controller probes report into.
type ScheduleExecutor struct {
	program *compiler.CompiledProgram

	values *ValueStore
	states *StateStore
	pool   *BufferPool
	time   *TimeState
	trace  *debugtrace.Controller

	customReducers map[string]CustomReducerFn
	nanCounter     func(slot ir.ValueSlot)

	frameID   uint64
	canonical ir.CanonicalSlots
}

// RunFrame executes one frame at the given absolute time and returns the
// assembled render output. Frames are atomic: RunFrame never returns a
// partially-stepped result (spec.md §4.9's suspension/cancellation model).
func (ex *ScheduleExecutor) RunFrame(tAbsMs float64) (*render.FrameIR, error) {
	ex.frameID++

	scope := NewScope(ex.pool)
	defer scope.Release()

	sched := ex.program.Schedule
	frame := &render.FrameIR{TAbsMs: tAbsMs}

	for _, step := range sched.Steps {
		switch step.Kind {
		case ir.StepTimeDerive:
			ex.canonical = step.Slots
			d := ex.time.resolve(step.TimeModel, tAbsMs)
			ex.values.Set(step.Slots.TAbsMs, tAbsMs)
			ex.values.Set(step.Slots.TModelMs, d.tModelMs)
			if step.Slots.Progress01 != ir.NoSlot() {
				ex.values.Set(step.Slots.Progress01, d.progress01)
			}
			if step.Slots.EndEvent != ir.NoSlot() {
				ex.values.Set(step.Slots.EndEvent, d.endEvent)
			}
			frame.TModelMs = d.tModelMs

		case ir.StepSigEval:
			v := ex.evalSig(step.SigExprID)
			ex.checkFinite(step.OutSlot, v)
			ex.values.Set(step.OutSlot, v)

		case ir.StepBusCombine:
			// Informational only: pass 7 already folded writers into the
			// bus's state register via ordinary SigEval steps above, so
			// there is nothing left to compute here — this step exists for
			// debugtrace/hot-swap tooling that wants a bus's writer list
			// and resolved slot without re-deriving it.

		case ir.StepFieldMaterialize:
			count := ex.program.DomainSizes[step.DomainID]
			fe := newFieldEvaluator(ex.program.FieldGraph, ex.program.ConstPool, scope, ex.evalSig)
			fe.materialize(step.FieldExprID, step.Format, count)

		case ir.StepRenderAssemble:
			frame.Passes = append(frame.Passes, ex.assemblePass(step.Plan, scope))

		case ir.StepDebugProbe:
			ex.trace.Record(debugtrace.ValueSummary{
				ProbeID: step.ProbeID,
				FrameID: ex.frameID,
				TAbsMs:  tAbsMs,
				Value:   ex.values.Get(step.SrcSlot),
			})
		}
	}

	return frame, nil
}

// evalSig evaluates one SigGraph node, recursing into its operands. The
// signal graph is a pure-function DAG over constants and already-resolved
// slots (state reads, time roots), so re-deriving an operand on demand
// rather than caching it is correct and cheap.
func (ex *ScheduleExecutor) evalSig(id int) any {
	node := ex.program.SigGraph.Node(id)

	switch node.Kind {
	case ir.SigConst:
		c := ex.program.ConstPool.Get(node.ConstID)
		return constValue(c.Type, c.Value)
	case ir.SigTimeAbs:
		// Seeded into its canonical slot by StepTimeDerive, not a SigEval
		// step, so a read here only ever happens as an operand of some
		// other expression (e.g. PhaseClock dividing by tAbsMs).
		return ex.values.GetFloat(ex.canonical.TAbsMs)
	case ir.SigTimeModel:
		return ex.values.GetFloat(ex.canonical.TModelMs)
	case ir.SigPhase01:
		return ex.values.GetFloat(ex.canonical.Progress01)
	case ir.SigZip:
		a := ex.evalSig(node.A)
		b := ex.evalSig(node.B)
		if reducerID, ok := strings.CutPrefix(string(node.Op), "custom:"); ok {
			if fn, ok := ex.customReducers[reducerID]; ok {
				return fn(asFloat(a), asFloat(b))
			}
			return a
		}
		return applyBinary(node.Op, a, b)
	case ir.SigMap:
		return applyUnary(node.Op, ex.evalSig(node.A))
	case ir.SigMix:
		return applyMix(ex.evalSig(node.Cond), ex.evalSig(node.A), ex.evalSig(node.B))
	case ir.SigReduceField:
		return ex.evalReduceField(node)
	case ir.SigStateRead:
		return ex.states.Get(node.State)
	case ir.SigStateWrite:
		v := ex.evalSig(node.Src)
		ex.states.Set(node.State, v)
		return v
	default:
		return 0.0
	}
}

func (ex *ScheduleExecutor) evalReduceField(node ir.SigExpr) any {
	scope := NewScope(ex.pool)
	defer scope.Release()
	domainID := ex.program.FieldGraph.Node(node.FieldID).DomainID
	count := ex.program.DomainSizes[domainID]
	fe := newFieldEvaluator(ex.program.FieldGraph, ex.program.ConstPool, scope, ex.evalSig)
	buf := fe.materialize(node.FieldID, ir.FormatF32, count)
	vals := make([]float64, len(buf.Values))
	for i, v := range buf.Values {
		vals[i] = asFloat(v)
	}
	return reduceFloats(reducerFnOf(node.ReduceFn), vals)
}

func (ex *ScheduleExecutor) checkFinite(slot ir.ValueSlot, v any) {
	if ex.nanCounter == nil {
		return
	}
	if f, ok := v.(float64); ok && (isNaN(f) || isInf(f)) {
		ex.nanCounter(slot)
	}
}

func (ex *ScheduleExecutor) assemblePass(plan ir.RenderPlan, scope *Scope) render.PassIR {
	pass := render.PassIR{
		SinkType:      plan.Sink,
		InstanceCount: plan.InstanceCount,
		Buffers:       make(map[string]render.Buffer, len(plan.Buffers)),
		Uniforms:      make(map[string]any, len(plan.Uniforms)),
	}
	if pass.InstanceCount < 0 && plan.CountSlot != ir.NoSlot() {
		pass.InstanceCount = int(ex.values.GetFloat(plan.CountSlot))
	}

	fe := newFieldEvaluator(ex.program.FieldGraph, ex.program.ConstPool, scope, ex.evalSig)
	for _, entry := range plan.Buffers {
		count := ex.program.DomainSizes[entry.DomainID]
		buf := fe.materialize(entry.FieldID, entry.Format, count)
		pass.Buffers[entry.Name] = encodeBuffer(entry.Format, buf)
	}
	for _, u := range plan.Uniforms {
		pass.Uniforms[u.Name] = ex.values.Get(u.Slot)
	}
	return pass
}

func encodeBuffer(format ir.BufferFormat, buf *Buffer) render.Buffer {
	out := render.Buffer{Format: format}
	switch format {
	case ir.FormatRGBA8:
		out.RGBA8 = make([][4]byte, len(buf.Values))
		for i, v := range buf.Values {
			c, _ := v.(Color)
			out.RGBA8[i] = render.EncodeColorRGBA8(c.R, c.G, c.B, c.A)
		}
	case ir.FormatVec2F:
		out.Floats = make([]float32, 0, len(buf.Values)*2)
		for _, v := range buf.Values {
			p, _ := v.(Vec2)
			out.Floats = append(out.Floats, float32(p.X), float32(p.Y))
		}
	case ir.FormatVec3F:
		out.Floats = make([]float32, 0, len(buf.Values)*3)
		for _, v := range buf.Values {
			p, _ := v.(Vec3)
			out.Floats = append(out.Floats, float32(p.X), float32(p.Y), float32(p.Z))
		}
	case ir.FormatVec4F:
		out.Floats = make([]float32, 0, len(buf.Values)*4)
		for _, v := range buf.Values {
			p, _ := v.(Vec4)
			out.Floats = append(out.Floats, float32(p.X), float32(p.Y), float32(p.Z), float32(p.W))
		}
	default:
		out.Floats = make([]float32, len(buf.Values))
		for i, v := range buf.Values {
			out.Floats[i] = float32(asFloat(v))
		}
	}
	return out
}

func isNaN(f float64) bool { return f != f }
func isInf(f float64) bool { return f > maxFloat || f < -maxFloat }

const maxFloat = 1.7976931348623157e+308
