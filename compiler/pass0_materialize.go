package compiler

import (
	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/patchgraph"
)

// materialize is pass 0: for every declared input port with no inbound
// edge, synthesize a deterministic default-source block and a Default-role
// edge feeding it, so every later pass sees a uniformly-connected graph
// (spec.md §4.2).
func materialize(patch *patchgraph.Patch, reg *blocks.Registry) (*patchgraph.Patch, *ErrorList) {
	errs := &ErrorList{}

	out := &patchgraph.Patch{
		Edges:    append([]patchgraph.Edge{}, patch.Edges...),
		Buses:    patch.Buses,
		Settings: patch.Settings,
		Blocks:   append([]patchgraph.Block{}, patch.Blocks...),
	}

	connected := make(map[string]bool, len(patch.Edges))
	for _, e := range patch.Edges {
		if e.To.Kind == patchgraph.EndpointPort {
			connected[e.To.BlockID+"#"+e.To.SlotID] = true
		}
	}

	for _, blk := range patch.Blocks {
		decl, ok := reg.Lookup(blk.Type)
		if !ok {
			errs.Add(&CompileError{Code: CodeUnknownBlockType, Type: blk.Type, BlockID: blk.ID})
			continue
		}

		for _, port := range decl.Inputs {
			key := blk.ID + "#" + port.ID
			if connected[key] {
				continue
			}
			if port.DefaultSourceType == "" {
				// No inbound edge and no default available; pass 6
				// reports this as a type error when it cannot resolve the
				// port's producer.
				continue
			}

			dsID := defaultSourceAnchor(blk.ID, port.ID)
			out.Blocks = append(out.Blocks, patchgraph.Block{
				ID:     dsID,
				Type:   port.DefaultSourceType,
				Params: port.DefaultParams,
				Role:   patchgraph.BlockRole{Kind: patchgraph.RoleDefaultSource, Anchor: dsID},
			})
			out.Edges = append(out.Edges, patchgraph.Edge{
				ID:      anchorHash("defaultEdge", blk.ID, port.ID),
				From:    patchgraph.PortEndpoint(dsID, "out"),
				To:      patchgraph.PortEndpoint(blk.ID, port.ID),
				Enabled: true,
				Role:    patchgraph.EdgeDefault,
			})
			connected[key] = true
		}
	}

	if !errs.Empty() {
		return nil, errs
	}
	return out, errs
}
