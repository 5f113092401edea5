package compiler

import (
	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/typesys"
)

// railBusID derives the deterministic, structural bus id a reserved rail
// publishes to. Only one such bus exists per rail across the whole patch —
// multiple ModulationRack blocks publish onto the same rail bus, combined
// like any other multi-writer bus.
func railBusID(railID string) string {
	return anchorHash("rail", railID)
}

func railCombineMode(t typesys.TypeDesc) string {
	switch t.Domain {
	case typesys.DomainBoolean:
		return "or"
	case typesys.DomainFloat, typesys.DomainColor, typesys.DomainPhase:
		return "last"
	default:
		return "last"
	}
}

// wireModulationRackRails is the rails pass (the Open Question decision
// recorded in SPEC_FULL.md: reserved rails are buses a ModulationRack block
// gates into existence, not reserved names a patch could declare itself).
// It runs after pass 0's default-source materialization and before pass 1's
// dense indexing, so every later pass sees the rail buses and publish edges
// as ordinary patch structure.
func wireModulationRackRails(patch *patchgraph.Patch, reg *blocks.Registry) *patchgraph.Patch {
	hasRack := false
	for _, blk := range patch.Blocks {
		if blk.Type == "ModulationRack" {
			hasRack = true
			break
		}
	}
	if !hasRack {
		return patch
	}

	existingBuses := make(map[string]bool, len(patch.Buses))
	for _, bus := range patch.Buses {
		existingBuses[bus.ID] = true
	}

	out := &patchgraph.Patch{
		Blocks:   patch.Blocks,
		Edges:    append([]patchgraph.Edge{}, patch.Edges...),
		Buses:    append([]patchgraph.Bus{}, patch.Buses...),
		Settings: patch.Settings,
	}

	rails := blocks.ModulationRackRails()
	for _, rail := range rails {
		busID := railBusID(rail.ID)
		if !existingBuses[busID] {
			out.Buses = append(out.Buses, patchgraph.Bus{
				ID:          busID,
				Name:        rail.ID,
				Type:        rail.Type.World.String() + ":" + rail.Type.Domain.String(),
				CombineMode: railCombineMode(rail.Type),
			})
			existingBuses[busID] = true
		}
	}

	for _, blk := range patch.Blocks {
		if blk.Type != "ModulationRack" {
			continue
		}
		for _, rail := range rails {
			out.Edges = append(out.Edges, patchgraph.Edge{
				ID:      anchorHash("railPublish", blk.ID, rail.ID),
				From:    patchgraph.PortEndpoint(blk.ID, rail.ID),
				To:      patchgraph.BusEndpoint(railBusID(rail.ID)),
				Enabled: true,
				Role:    patchgraph.EdgeAuto,
			})
		}
	}

	return out
}
