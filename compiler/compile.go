package compiler

import (
	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
)

// Compile lowers a raw patch into a CompiledProgram by running passes 0-8 in
// order, accumulating diagnostics per pass and stopping at the first pass
// that reports an error — the compiler never returns a partial
// CompiledProgram (spec.md §7).
func Compile(patch *patchgraph.Patch, reg *blocks.Registry, xforms *transform.Registry, knownCustomReducers map[string]bool) (*CompiledProgram, error) {
	materialized, errs := materialize(patch, reg)
	if !errs.Empty() {
		return nil, errs
	}
	materialized = wireModulationRackRails(materialized, reg)

	normalized, idxMap := normalize(materialized)

	tp, errs := typeGraph(normalized, idxMap, reg, xforms, knownCustomReducers)
	if !errs.Empty() {
		return nil, errs
	}

	_, timeModel, errs := timeTopology(normalized)
	if !errs.Empty() {
		return nil, errs
	}

	depGraph := buildDepGraph(normalized, idxMap)
	boundary := stateBoundaryPredicate(normalized, reg)
	if errs = checkCycleLegality(normalized, idxMap, depGraph, boundary); !errs.Empty() {
		return nil, errs
	}
	order := topologicalOrder(depGraph)

	builder := ir.NewIRBuilder()

	lowered, errs := lowerBlocks(tp, reg, xforms, builder, order)
	if !errs.Empty() {
		return nil, errs
	}

	if errs = resolveBusCombines(tp, lowered, builder); !errs.Empty() {
		return nil, errs
	}

	schedule, debugIndex, errs := buildSchedule(tp, lowered, builder, timeModel)
	if !errs.Empty() {
		return nil, errs
	}

	warnings := collectWarnings(normalized, tp, lowered)

	program := &CompiledProgram{
		Meta: ProgramMeta{
			BlockCount: len(normalized.Blocks),
			EdgeCount:  len(normalized.Edges),
			BusCount:   len(normalized.Buses),
			Seed:       normalized.Settings.Seed,
		},
		TypeTable:   builder.Types,
		ConstPool:   builder.Consts,
		SigGraph:    builder.Sig,
		FieldGraph:  builder.Field,
		Schedule:    schedule,
		StateTable:  builder.StateTable(),
		DebugIndex:  debugIndex,
		DomainSizes: builder.DomainSizes(),
		TimeModel:   timeModel,
		Warnings:    warnings,
	}
	return program, nil
}

// stateBoundaryPredicate builds the closure pass 5 uses to decide whether a
// cyclic block legalizes the SCC it participates in.
func stateBoundaryPredicate(patch *patchgraph.Patch, reg *blocks.Registry) func(blockID string) bool {
	byID := make(map[string]patchgraph.Block, len(patch.Blocks))
	for _, blk := range patch.Blocks {
		byID[blk.ID] = blk
	}
	return func(blockID string) bool {
		blk, ok := byID[blockID]
		if !ok {
			return false
		}
		decl, ok := reg.Lookup(blk.Type)
		return ok && decl.Stateful
	}
}

// collectWarnings surfaces non-fatal observations: a declared bus nothing
// ever publishes to keeps its zero-initialized register value forever,
// which is legal but usually a patch-authoring mistake.
func collectWarnings(patch *patchgraph.Patch, tp *TypedPatch, lowered *LoweredProgram) []Warning {
	written := make(map[string]bool)
	for _, w := range lowered.BusWrites {
		written[w.BusID] = true
	}
	var warnings []Warning
	for _, bus := range patch.Buses {
		if !written[bus.ID] {
			warnings = append(warnings, Warning{
				Code:    "UnpublishedBus",
				Message: "bus has no publishers; it will hold its zero value every frame",
				BusID:   bus.ID,
			})
		}
	}
	return warnings
}
