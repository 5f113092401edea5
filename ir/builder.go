package ir

import "github.com/sarchlab/patchflow/typesys"

// IRBuilder is the shared mutable context block lowering and transform
// compileToIR functions (pass 6) and bus combine folding (pass 7) use to
// emit IR nodes. It
// owns the ConstPool, TypeTable, SigGraph, FieldGraph, and the state/domain
// id counters for one compiled program.
type IRBuilder struct {
	Consts *ConstPool
	Types  *TypeTable
	Sig    *SigGraph
	Field  *FieldGraph

	nextState  StateId
	stateTypes map[StateId]typesys.TypeDesc
	stateAnchors map[StateId]string

	nextDomain int
	domainSize map[int]int // domainID -> cardinality, -1 if dynamic

	sigTypeMemo   map[int]typesys.TypeDesc
	fieldTypeMemo map[int]typesys.TypeDesc
}

// NewIRBuilder creates an empty builder.
func NewIRBuilder() *IRBuilder {
	return &IRBuilder{
		Consts:       NewConstPool(),
		Types:        NewTypeTable(),
		Sig:          NewSigGraph(),
		Field:        NewFieldGraph(),
		stateTypes:   make(map[StateId]typesys.TypeDesc),
		stateAnchors: make(map[StateId]string),
		domainSize:   make(map[int]int),
	}
}

// SigConst interns a constant and returns a ValueRef to a const-read signal
// node (does not allocate a slot by itself; pass 8 allocates a slot and
// emits a SigEval step for every signal node, this one included).
func (b *IRBuilder) SigConst(t typesys.TypeDesc, value any) ValueRef {
	constID := b.Consts.Intern(t, value)
	exprID := b.Sig.Const(constID)
	return ValueRef{Kind: RefSignal, ID: exprID, SlotIdx: NoSlot()}
}

// ScalarConst interns a compile-time scalar constant without creating a
// signal expression node (used for lens/adapter literal parameters).
func (b *IRBuilder) ScalarConst(t typesys.TypeDesc, value any) ValueRef {
	constID := b.Consts.Intern(t, value)
	return ValueRef{Kind: RefScalarConst, ID: constID, SlotIdx: NoSlot()}
}

// sigNodeID resolves a ValueRef to a SigGraph node index, wrapping a
// RefScalarConst operand in a fresh SigConst node on demand — every read of
// a scalar constant as a signal operand appends a new SigConst node, while
// the constant itself stays interned once in the ConstPool.
func (b *IRBuilder) sigNodeID(ref ValueRef) int {
	if ref.Kind == RefScalarConst {
		return b.Sig.Const(ref.ID)
	}
	return ref.ID
}

// SigZip emits a binary elementwise signal node.
func (b *IRBuilder) SigZip(op SigOp, a, bRef ValueRef) ValueRef {
	exprID := b.Sig.Zip(op, b.sigNodeID(a), b.sigNodeID(bRef))
	return ValueRef{Kind: RefSignal, ID: exprID, SlotIdx: NoSlot()}
}

// SigMap emits a unary elementwise signal node.
func (b *IRBuilder) SigMap(op SigOp, src ValueRef) ValueRef {
	exprID := b.Sig.Map(op, b.sigNodeID(src))
	return ValueRef{Kind: RefSignal, ID: exprID, SlotIdx: NoSlot()}
}

// SigMix emits a conditional-select signal node.
func (b *IRBuilder) SigMix(cond, a, bRef ValueRef) ValueRef {
	exprID := b.Sig.Mix(b.sigNodeID(cond), b.sigNodeID(a), b.sigNodeID(bRef))
	return ValueRef{Kind: RefSignal, ID: exprID, SlotIdx: NoSlot()}
}

// AllocValueSlot allocates a new typed slot in the value store.
func (b *IRBuilder) AllocValueSlot(t typesys.TypeDesc) ValueSlot {
	return b.Types.Alloc(t)
}

// RegisterSigSlot returns a copy of ref with SlotIdx set to slot; it records
// nothing in the builder. Pass 8 allocates its own slot for every signal
// node and emits one SigEval step per node.
func (b *IRBuilder) RegisterSigSlot(ref ValueRef, slot ValueSlot) ValueRef {
	ref.SlotIdx = slot
	return ref
}

// FieldBroadcast emits a field node that broadcasts a signal to every
// element of a domain.
func (b *IRBuilder) FieldBroadcast(domainID int, sig ValueRef) ValueRef {
	exprID := b.Field.BroadcastSig(domainID, b.sigNodeID(sig))
	return ValueRef{Kind: RefField, ID: exprID, SlotIdx: NoSlot()}
}

// FieldConst emits a uniform-constant field node.
func (b *IRBuilder) FieldConst(domainID int, t typesys.TypeDesc, value any) ValueRef {
	constID := b.Consts.Intern(t, value)
	exprID := b.Field.Const(domainID, constID)
	return ValueRef{Kind: RefField, ID: exprID, SlotIdx: NoSlot()}
}

// AllocDomain registers a new element-population domain of the given
// cardinality (-1 if determined dynamically at frame time) and returns its
// id plus a ValueRef naming it.
func (b *IRBuilder) AllocDomain(count int) (int, ValueRef) {
	id := b.nextDomain
	b.nextDomain++
	b.domainSize[id] = count
	return id, ValueRef{Kind: RefDomain, ID: id, SlotIdx: NoSlot()}
}

// DomainSize returns the cardinality registered for a domain id.
func (b *IRBuilder) DomainSize(domainID int) int { return b.domainSize[domainID] }

// DomainSizes returns every registered domain's cardinality, for carrying
// onto CompiledProgram so the runtime can size FieldMaterialize buffers
// without needing the builder itself.
func (b *IRBuilder) DomainSizes() map[int]int {
	out := make(map[int]int, len(b.domainSize))
	for k, v := range b.domainSize {
		out[k] = v
	}
	return out
}

// AllocStateId allocates a new state slot of the given type for a stateful
// block, tagging it with the block's structural anchor so hot-swap (§4.13)
// can map old -> new state across recompiles.
func (b *IRBuilder) AllocStateId(t typesys.TypeDesc, anchor string) StateId {
	id := b.nextState
	b.nextState++
	b.stateTypes[id] = t
	b.stateAnchors[id] = anchor
	return id
}

// StateRead emits a node reading last frame's value of a state slot.
func (b *IRBuilder) StateRead(id StateId) ValueRef {
	exprID := b.Sig.StateRead(id)
	return ValueRef{Kind: RefSignal, ID: exprID, SlotIdx: NoSlot()}
}

// StateWrite emits a node writing this frame's value into a state slot.
func (b *IRBuilder) StateWrite(id StateId, src ValueRef) ValueRef {
	exprID := b.Sig.StateWrite(id, b.sigNodeID(src))
	return ValueRef{Kind: RefSignal, ID: exprID, SlotIdx: NoSlot()}
}

// StateTypeOf returns the type registered for an allocated state id.
func (b *IRBuilder) StateTypeOf(id StateId) typesys.TypeDesc { return b.stateTypes[id] }

// StateTable returns the (type, anchor) for every allocated state id, the
// shape persisted on CompiledProgram.stateTable (spec.md §6).
func (b *IRBuilder) StateTable() map[StateId]StateEntry {
	out := make(map[StateId]StateEntry, len(b.stateTypes))
	for id, t := range b.stateTypes {
		out[id] = StateEntry{Type: t, Anchor: b.stateAnchors[id]}
	}
	return out
}

// StateEntry is one row of the compiled state table.
type StateEntry struct {
	Type   typesys.TypeDesc
	Anchor string
}

// SigTypeOf infers the result type of a signal expression node by walking
// its operands; comparisons (gt/lt) always yield boolean, everything else
// preserves its first operand's type. The signal graph is append-only and
// every operand index is strictly less than the node referencing it, so
// plain memoized recursion terminates without a visited-set.
func (b *IRBuilder) SigTypeOf(i int) typesys.TypeDesc {
	if b.sigTypeMemo == nil {
		b.sigTypeMemo = make(map[int]typesys.TypeDesc)
	}
	if t, ok := b.sigTypeMemo[i]; ok {
		return t
	}
	n := b.Sig.Node(i)
	var t typesys.TypeDesc
	switch n.Kind {
	case SigConst:
		t = b.Consts.Get(n.ConstID).Type
	case SigTimeAbs, SigTimeModel:
		t = typesys.Sig(typesys.DomainTimeMs)
	case SigPhase01:
		t = typesys.Sig(typesys.DomainPhase)
	case SigZip:
		if n.Op == OpGT || n.Op == OpLT {
			t = typesys.Sig(typesys.DomainBoolean)
		} else {
			t = b.SigTypeOf(n.A)
		}
	case SigMap:
		t = b.SigTypeOf(n.A)
	case SigMix:
		t = b.SigTypeOf(n.A)
	case SigReduceField:
		t = typesys.Sig(typesys.DomainFloat)
	case SigStateRead:
		t = b.stateTypes[n.State]
	case SigStateWrite:
		t = b.SigTypeOf(n.Src)
	}
	b.sigTypeMemo[i] = t
	return t
}

// FieldTypeOf infers the result type of a field expression node, same
// memoized-recursion shape as SigTypeOf.
func (b *IRBuilder) FieldTypeOf(i int) typesys.TypeDesc {
	if b.fieldTypeMemo == nil {
		b.fieldTypeMemo = make(map[int]typesys.TypeDesc)
	}
	if t, ok := b.fieldTypeMemo[i]; ok {
		return t
	}
	n := b.Field.Node(i)
	var t typesys.TypeDesc
	switch n.Kind {
	case FieldConst:
		t = b.Consts.Get(n.ConstID).Type
	case FieldBroadcastSig:
		base := b.SigTypeOf(n.SigExprID)
		t = typesys.Field(base.Domain)
	case FieldHash01ByID:
		t = typesys.Field(typesys.DomainFloat)
	case FieldPosGrid:
		t = typesys.Field(typesys.DomainVec2)
	case FieldMap:
		t = b.FieldTypeOf(n.A)
	case FieldZip:
		t = b.FieldTypeOf(n.A)
	case FieldCombineNode:
		if len(n.Terms) > 0 {
			t = b.FieldTypeOf(n.Terms[0])
		}
	case FieldSource:
		t = typesys.Field(typesys.DomainFloat)
	}
	b.fieldTypeMemo[i] = t
	return t
}
