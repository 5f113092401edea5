package compiler

import (
	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
	"github.com/sarchlab/patchflow/typesys"
)

// TypedPatch is pass 2's output: every port and bus's resolved type, plus
// the adapter chain (if any) selected for each edge.
type TypedPatch struct {
	Patch   *patchgraph.Patch
	IdxMap  *BlockIndexMap
	Outputs map[string]map[string]typesys.TypeDesc // blockID -> portID -> type
	Inputs  map[string]map[string]typesys.TypeDesc
	Buses   map[string]typesys.TypeDesc
	BusMode map[string]typesys.CombineMode
	BusCustomReducer map[string]string
	AdapterPlans map[string]transform.AdapterChain // edgeID -> chain
}

const defaultAdapterCostBudget = 4

// typeGraph is pass 2: infer/check types on every port and propagate
// through edges, selecting an adapter chain wherever source and sink types
// differ (spec.md §4.3).
func typeGraph(patch *patchgraph.Patch, idxMap *BlockIndexMap, reg *blocks.Registry, xforms *transform.Registry, knownCustomReducers map[string]bool) (*TypedPatch, *ErrorList) {
	errs := &ErrorList{}
	tp := &TypedPatch{
		Patch:            patch,
		IdxMap:           idxMap,
		Outputs:          make(map[string]map[string]typesys.TypeDesc),
		Inputs:           make(map[string]map[string]typesys.TypeDesc),
		Buses:            make(map[string]typesys.TypeDesc),
		BusMode:          make(map[string]typesys.CombineMode),
		BusCustomReducer: make(map[string]string),
		AdapterPlans:     make(map[string]transform.AdapterChain),
	}

	for _, blk := range patch.Blocks {
		decl, ok := reg.Lookup(blk.Type)
		if !ok {
			errs.Add(&CompileError{Code: CodeUnknownBlockType, Type: blk.Type, BlockID: blk.ID})
			continue
		}
		outs := make(map[string]typesys.TypeDesc, len(decl.Outputs))
		for _, p := range decl.Outputs {
			outs[p.ID] = p.Type
		}
		tp.Outputs[blk.ID] = outs
		ins := make(map[string]typesys.TypeDesc, len(decl.Inputs))
		for _, p := range decl.Inputs {
			ins[p.ID] = p.Type
		}
		tp.Inputs[blk.ID] = ins
	}

	for _, bus := range patch.Buses {
		t, err := typesys.ParseTypeDesc(bus.Type)
		if err != nil {
			errs.Add(&CompileError{Code: CodeTypeMismatch, From: bus.Type, Reason: err.Error()})
			continue
		}
		tp.Buses[bus.ID] = t
		mode, customID, err := typesys.ParseCombineMode(bus.CombineMode)
		if err != nil {
			errs.Add(&CompileError{Code: CodeTypeMismatch, Reason: err.Error()})
			continue
		}
		if mode == typesys.CombineCustom {
			if !knownCustomReducers[customID] {
				errs.Add(&CompileError{Code: CodeUnknownCustomCombineReducer, Reason: customID})
				continue
			}
			tp.BusCustomReducer[bus.ID] = customID
		} else if !mode.ValidForType(t) {
			errs.Add(&CompileError{Code: CodeInvalidCombineModeForType, Reason: bus.CombineMode + " vs " + t.String()})
			continue
		}
		tp.BusMode[bus.ID] = mode
	}

	if !errs.Empty() {
		return tp, errs
	}

	for _, e := range patch.Edges {
		if !e.Enabled {
			continue
		}
		fromType, ok := resolveEndpointType(e.From, tp, true)
		if !ok {
			continue
		}
		toType, ok := resolveEndpointType(e.To, tp, false)
		if !ok {
			continue
		}

		if fromType.Equal(toType) {
			continue
		}

		compat := typesys.Classify(fromType, toType)
		if compat == typesys.CompatIncompatible {
			errs.Add(&CompileError{Code: CodeTypeMismatch, EdgeID: e.ID, From: fromType.String(), To: toType.String()})
			continue
		}

		chain, found := xforms.FindAdapterChain(fromType, toType, defaultAdapterCostBudget)
		if !found {
			errs.Add(&CompileError{Code: CodeAdapterNotFound, EdgeID: e.ID, From: fromType.String(), To: toType.String()})
			continue
		}
		tp.AdapterPlans[e.ID] = chain
	}

	if !errs.Empty() {
		return tp, errs
	}
	return tp, errs
}

func resolveEndpointType(ep patchgraph.Endpoint, tp *TypedPatch, isSource bool) (typesys.TypeDesc, bool) {
	if ep.Kind == patchgraph.EndpointBus {
		t, ok := tp.Buses[ep.BusID]
		return t, ok
	}
	table := tp.Inputs
	if isSource {
		table = tp.Outputs
	}
	ports, ok := table[ep.BlockID]
	if !ok {
		return typesys.TypeDesc{}, false
	}
	t, ok := ports[ep.SlotID]
	return t, ok
}
