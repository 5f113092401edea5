package compiler

import "github.com/sarchlab/patchflow/ir"

// ProgramMeta carries compile-time bookkeeping about the source patch, kept
// on the compiled program for diagnostics. It is not part of the cache key:
// cachestore keys entries by the canonical patch hash alone.
type ProgramMeta struct {
	BlockCount int
	EdgeCount  int
	BusCount   int
	Seed       uint32
}

// CompiledProgram is the complete output of the compiler (spec.md §3.3,
// §6): an IR plus the linear Schedule the runtime executes every frame.
// Everything on it is immutable after Compile returns.
type CompiledProgram struct {
	Meta      ProgramMeta
	TypeTable *ir.TypeTable
	ConstPool *ir.ConstPool
	// SigGraph and FieldGraph are the expression DAGs the Schedule's
	// SigExprID/FieldExprID steps index into. They are immutable once
	// Compile returns, same as everything else on CompiledProgram.
	SigGraph   *ir.SigGraph
	FieldGraph *ir.FieldGraph
	Schedule   *ir.Schedule
	StateTable map[ir.StateId]ir.StateEntry
	// DebugIndex maps "blockID#portID" to the slot holding that port's
	// current-frame value, for debugtrace and debugserver lookups.
	DebugIndex map[string]ir.ValueSlot
	// DomainSizes carries every element-population domain's cardinality so
	// the runtime can size FieldMaterialize buffers without the IRBuilder.
	DomainSizes map[int]int
	TimeModel   ir.TimeModel
	Warnings    []Warning
}
