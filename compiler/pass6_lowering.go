package compiler

import (
	"fmt"

	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
)

// BusWrite is one publisher's contribution to a bus, collected during
// lowering for pass 7 to reduce into a combine tree.
type BusWrite struct {
	BusID   string
	EdgeID  string
	SortKey int
	Value   ir.ValueRef
}

// RenderSinkRef names one render-capability block with its resolved input
// values, for pass 8 to turn into a RenderPlan.
type RenderSinkRef struct {
	BlockID string
	Type    string
	Inputs  map[string]ir.ValueRef
}

// LoweredProgram is pass 6's output.
type LoweredProgram struct {
	Outputs     map[string]map[string]ir.ValueRef // blockID -> portID -> value
	BusWrites   []BusWrite
	BusStateIDs map[string]ir.StateId // busID -> dedicated last-frame register
	RenderSinks []RenderSinkRef
}

// lowerBlocks is pass 6: invoke every block's Lower function in the order
// pass 5 validated, resolving each input edge's adapter chain and lens
// transforms along the way (spec.md §4.6-§4.8).
//
// Every bus read resolves to a dedicated per-bus state register rather than
// waiting on this frame's publishers — buses always deliver last frame's
// combined value (the DepGraph already excludes bus edges for exactly this
// reason: it is what lets a bus carry a value across an otherwise-illegal
// cycle). A back-edge within a legal SCC (a self-loop, or a cross-edge into
// a stateBoundary block) resolves the same way, through a per-edge feedback
// register the producer's real lowering writes into once it runs — that one
// frame of delay is what makes the cycle legal in the first place.
func lowerBlocks(tp *TypedPatch, reg *blocks.Registry, xforms *transform.Registry, b *ir.IRBuilder, order []NodeIndex) (*LoweredProgram, *ErrorList) {
	errs := &ErrorList{}
	patch := tp.Patch
	idxMap := tp.IdxMap

	lowered := &LoweredProgram{
		Outputs:     make(map[string]map[string]ir.ValueRef),
		BusStateIDs: make(map[string]ir.StateId),
	}

	for _, bus := range patch.Buses {
		t := tp.Buses[bus.ID]
		lowered.BusStateIDs[bus.ID] = b.AllocStateId(t, anchorHash("bus", bus.ID))
	}

	blockByID := make(map[string]patchgraph.Block, len(patch.Blocks))
	for _, blk := range patch.Blocks {
		blockByID[blk.ID] = blk
	}

	incomingPort := make(map[string]map[string]patchgraph.Edge)
	var busPublishers []patchgraph.Edge
	for _, e := range patch.Edges {
		if !e.Enabled {
			continue
		}
		if e.To.Kind == patchgraph.EndpointBus {
			busPublishers = append(busPublishers, e)
			continue
		}
		m, ok := incomingPort[e.To.BlockID]
		if !ok {
			m = make(map[string]patchgraph.Edge)
			incomingPort[e.To.BlockID] = m
		}
		m[e.To.SlotID] = e
	}

	feedbackSlots := make(map[string]ir.StateId)
	loweredSet := make(map[string]bool)

	resolvePortValue := func(consumerBlockID, portID string, resolvedSoFar map[string]ir.ValueRef) (ir.ValueRef, error) {
		e, ok := incomingPort[consumerBlockID][portID]
		if !ok {
			return ir.ValueRef{}, fmt.Errorf("no producer resolved for %s#%s", consumerBlockID, portID)
		}

		var raw ir.ValueRef
		if e.From.Kind == patchgraph.EndpointBus {
			raw = b.StateRead(lowered.BusStateIDs[e.From.BusID])
		} else {
			producerID := e.From.BlockID
			if outs, ok := lowered.Outputs[producerID]; ok && loweredSet[producerID] {
				v, ok := outs[e.From.SlotID]
				if !ok {
					return ir.ValueRef{}, fmt.Errorf("block %q has no output port %q", producerID, e.From.SlotID)
				}
				raw = v
			} else {
				key := producerID + "#" + e.From.SlotID
				stateID, ok := feedbackSlots[key]
				if !ok {
					outType, ok := tp.Outputs[producerID][e.From.SlotID]
					if !ok {
						return ir.ValueRef{}, fmt.Errorf("unresolved output type for feedback edge %s", e.ID)
					}
					stateID = b.AllocStateId(outType, anchorHash("feedback", producerID, e.From.SlotID))
					feedbackSlots[key] = stateID
				}
				raw = b.StateRead(stateID)
			}
		}

		if chain, ok := tp.AdapterPlans[e.ID]; ok {
			for _, step := range chain.Steps {
				params := map[string]any{}
				if domID, ok := inferDomainID(resolvedSoFar); ok {
					params["domainID"] = domID
				}
				var err error
				raw, err = step.Compile(b, raw, params)
				if err != nil {
					errs.Add(&CompileError{Code: CodeTransformIRUnsupported, EdgeID: e.ID, StepID: step.ID, Reason: err.Error()})
					return raw, nil
				}
			}
		}

		for _, ts := range e.Transforms {
			lens, ok := xforms.Lens(ts.ID)
			if !ok {
				errs.Add(&CompileError{Code: CodeTransformIRUnsupported, EdgeID: e.ID, StepID: ts.ID, Reason: "unknown lens"})
				continue
			}
			var err error
			raw, err = lens.Compile(b, raw, ts.Params)
			if err != nil {
				errs.Add(&CompileError{Code: CodeTransformIRUnsupported, EdgeID: e.ID, StepID: ts.ID, Reason: err.Error()})
			}
		}

		return raw, nil
	}

	for _, nodeIdx := range order {
		blockID := idxMap.BlockIDAt(nodeIdx)
		blk, ok := blockByID[blockID]
		if !ok {
			continue
		}
		decl, ok := reg.Lookup(blk.Type)
		if !ok {
			continue // already reported by pass 2
		}

		inputs := make(map[string]ir.ValueRef, len(decl.Inputs))
		for _, port := range decl.Inputs {
			v, err := resolvePortValue(blockID, port.ID, inputs)
			if err != nil {
				errs.Add(&CompileError{Code: CodeTypeMismatch, BlockID: blockID, Reason: err.Error()})
				continue
			}
			inputs[port.ID] = v
		}

		anchor := blk.ID
		if blk.Role.Kind == patchgraph.RoleDefaultSource {
			anchor = blk.Role.Anchor
		}
		outs, err := decl.Lower(&blocks.LowerCtx{Builder: b, BlockID: blockID, Anchor: anchor}, blk.Params, inputs)
		if err != nil {
			errs.Add(&CompileError{Code: CodeTransformIRUnsupported, BlockID: blockID, Reason: err.Error()})
			continue
		}
		lowered.Outputs[blockID] = outs
		loweredSet[blockID] = true

		for portID, val := range outs {
			key := blockID + "#" + portID
			if stateID, ok := feedbackSlots[key]; ok {
				b.StateWrite(stateID, val)
			}
		}

		if decl.Capability == blocks.CapRender {
			lowered.RenderSinks = append(lowered.RenderSinks, RenderSinkRef{BlockID: blockID, Type: blk.Type, Inputs: inputs})
		}
	}

	for _, e := range busPublishers {
		outs, ok := lowered.Outputs[e.From.BlockID]
		if !ok {
			continue
		}
		raw, ok := outs[e.From.SlotID]
		if !ok {
			continue
		}
		for _, ts := range e.Transforms {
			lens, ok := xforms.Lens(ts.ID)
			if !ok {
				continue
			}
			var err error
			raw, err = lens.Compile(b, raw, ts.Params)
			if err != nil {
				errs.Add(&CompileError{Code: CodeTransformIRUnsupported, EdgeID: e.ID, StepID: ts.ID, Reason: err.Error()})
			}
		}
		lowered.BusWrites = append(lowered.BusWrites, BusWrite{BusID: e.To.BusID, EdgeID: e.ID, SortKey: e.SortKey, Value: raw})
	}

	return lowered, errs
}

// inferDomainID looks for a domain value already resolved among a block's
// other inputs bound so far, used to supply the signalToField adapter
// family's required "domainID" context: which element population a
// broadcast adapter should spread its signal over.
func inferDomainID(resolvedSoFar map[string]ir.ValueRef) (int, bool) {
	for _, v := range resolvedSoFar {
		if v.Kind == ir.RefDomain {
			return v.ID, true
		}
	}
	return 0, false
}
