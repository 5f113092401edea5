package compiler

import (
	"sort"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// buildSchedule is pass 8: linearize every signal/field expression node into
// a flat, phase-partitioned Schedule the runtime walks once per frame
// (spec.md §3.3, §4.8).
//
// A signal expression graph is append-only and every operand index is
// strictly less than the node referencing it, so the graph's own node order
// is already a valid topological order — pass 8 allocates one ValueSlot per
// node in that order and emits one SigEval step per node, with no separate
// dependency sort required. The three canonical time-root reads (tAbsMs,
// tModelMs, progress01) are seeded by a single TimeDerive step instead of a
// generic SigEval, since their value comes from the host clock rather than
// from evaluating other slots.
func buildSchedule(tp *TypedPatch, lowered *LoweredProgram, b *ir.IRBuilder, timeModel ir.TimeModel) (*ir.Schedule, map[string]ir.ValueSlot, *ErrorList) {
	errs := &ErrorList{}
	sched := &ir.Schedule{}

	sigSlots := make([]ir.ValueSlot, b.Sig.Len())
	var canonical ir.CanonicalSlots
	canonical.Progress01 = ir.NoSlot()
	canonical.EndEvent = ir.NoSlot()

	for i := 0; i < b.Sig.Len(); i++ {
		t := b.SigTypeOf(i)
		slot := b.AllocValueSlot(t)
		sigSlots[i] = slot
		switch b.Sig.Node(i).Kind {
		case ir.SigTimeAbs:
			canonical.TAbsMs = slot
		case ir.SigTimeModel:
			canonical.TModelMs = slot
		case ir.SigPhase01:
			canonical.Progress01 = slot
		}
	}

	sched.Steps = append(sched.Steps, ir.Step{
		Kind:      ir.StepTimeDerive,
		Phase:     ir.PhaseTime,
		TimeModel: timeModel,
		Slots:     canonical,
	})

	for i := 0; i < b.Sig.Len(); i++ {
		switch b.Sig.Node(i).Kind {
		case ir.SigTimeAbs, ir.SigTimeModel, ir.SigPhase01:
			continue // seeded by TimeDerive above
		}
		sched.Steps = append(sched.Steps, ir.Step{
			Kind:      ir.StepSigEval,
			Phase:     ir.PhaseSignals,
			SigExprID: i,
			OutSlot:   sigSlots[i],
		})
	}

	// Bus combine: the reduction itself already runs as ordinary SigEval
	// steps above (pass 7 folds writers with SigZip nodes and writes
	// the bus's dedicated state register), so these steps are informational
	// — they expose the bus's writer list and resolved slot to debug trace
	// and hot-swap tooling without the runtime re-deriving it.
	byBus := make(map[string][]BusWrite)
	for _, w := range lowered.BusWrites {
		byBus[w.BusID] = append(byBus[w.BusID], w)
	}
	busIDs := make([]string, 0, len(tp.Buses))
	for id := range tp.Buses {
		busIDs = append(busIDs, id)
	}
	sort.Strings(busIDs)
	for _, busID := range busIDs {
		writers := byBus[busID]
		sort.SliceStable(writers, func(i, j int) bool {
			if writers[i].SortKey != writers[j].SortKey {
				return writers[i].SortKey < writers[j].SortKey
			}
			return writers[i].EdgeID < writers[j].EdgeID
		})
		busWriters := make([]ir.BusWriter, len(writers))
		for i, w := range writers {
			busWriters[i] = ir.BusWriter{SortKey: w.SortKey, EdgeID: w.EdgeID, Slot: sigSlots[w.Value.ID]}
		}
		busOutSlot := ir.NoSlot()
		if stateID, ok := lowered.BusStateIDs[busID]; ok {
			busOutSlot = findStateReadSlot(b, sigSlots, stateID)
		}
		sched.Steps = append(sched.Steps, ir.Step{
			Kind:       ir.StepBusCombine,
			Phase:      ir.PhaseBuses,
			BusID:      busID,
			Mode:       int(tp.BusMode[busID]),
			Writers:    busWriters,
			BusOutSlot: busOutSlot,
		})
	}

	// Field materialization: lazy by construction — only fields actually
	// consumed by a render sink get a FieldMaterialize step (spec.md
	// §4.8's "lazily materialize only render/reducer-consumed fields").
	materialized := make(map[int]bool)
	for _, sink := range lowered.RenderSinks {
		for portName, v := range sink.Inputs {
			if v.Kind != ir.RefField {
				continue
			}
			if materialized[v.ID] {
				continue
			}
			materialized[v.ID] = true
			t := b.FieldTypeOf(v.ID)
			domainID := b.Field.Node(v.ID).DomainID
			sched.Steps = append(sched.Steps, ir.Step{
				Kind:        ir.StepFieldMaterialize,
				Phase:       ir.PhaseFields,
				FieldExprID: v.ID,
				DomainID:    domainID,
				Format:      bufferFormatFor(t),
				BufferTag:   sink.BlockID + ":" + portName,
			})
		}
	}

	for _, sink := range lowered.RenderSinks {
		plan, ok := buildRenderPlan(b, sink, sigSlots)
		if !ok {
			continue
		}
		sched.Steps = append(sched.Steps, ir.Step{
			Kind:     ir.StepRenderAssemble,
			Phase:    ir.PhaseRender,
			SinkName: sink.BlockID,
			Plan:     plan,
		})
	}

	debugIndex := make(map[string]ir.ValueSlot)
	for blockID, ports := range lowered.Outputs {
		for portID, v := range ports {
			if v.Kind == ir.RefSignal {
				debugIndex[blockID+"#"+portID] = sigSlots[v.ID]
			}
		}
	}

	return sched, debugIndex, errs
}

func findStateReadSlot(b *ir.IRBuilder, sigSlots []ir.ValueSlot, id ir.StateId) ir.ValueSlot {
	for i := 0; i < b.Sig.Len(); i++ {
		n := b.Sig.Node(i)
		if n.Kind == ir.SigStateRead && n.State == id {
			return sigSlots[i]
		}
	}
	return ir.NoSlot()
}

func bufferFormatFor(t typesys.TypeDesc) ir.BufferFormat {
	switch t.Domain {
	case typesys.DomainVec2:
		return ir.FormatVec2F
	case typesys.DomainVec3:
		return ir.FormatVec3F
	case typesys.DomainVec4:
		return ir.FormatVec4F
	case typesys.DomainColor:
		return ir.FormatRGBA8
	default:
		return ir.FormatF32
	}
}

func buildRenderPlan(b *ir.IRBuilder, sink RenderSinkRef, sigSlots []ir.ValueSlot) (ir.RenderPlan, bool) {
	switch sink.Type {
	case "RenderInstances2D":
		posRef, ok := sink.Inputs["pos"]
		if !ok || posRef.Kind != ir.RefField {
			return ir.RenderPlan{}, false
		}
		domainID := b.Field.Node(posRef.ID).DomainID
		plan := ir.RenderPlan{
			Sink:          ir.SinkInstances2D,
			InstanceCount: b.DomainSize(domainID),
			CountSlot:     ir.NoSlot(),
			Buffers: []ir.BufferPlanEntry{
				{Name: "pos", FieldID: posRef.ID, DomainID: domainID, Format: ir.FormatVec2F},
			},
		}
		for _, name := range []string{"size", "fill"} {
			if v, ok := sink.Inputs[name]; ok && v.Kind == ir.RefSignal {
				plan.Uniforms = append(plan.Uniforms, ir.UniformPlanEntry{Name: name, Slot: sigSlots[v.ID]})
			}
		}
		return plan, true
	default:
		return ir.RenderPlan{}, false
	}
}
