// Package ir defines the intermediate representation the compiler lowers
// patches into: typed constants, signal/field expression DAGs, value slots,
// state slots, and the linear schedule the runtime executes. Everything in
// this package is built during compile and is read-only afterward — the
// compiled program owns it (spec.md §3.3).
package ir

import "fmt"

// ValueSlot is a dense index into the per-frame value store, typed by the
// TypeTable at the same index.
type ValueSlot int

// StateId is a dense index into the state store. Only blocks flagged
// stateful allocate one.
type StateId int

// RefKind discriminates what a ValueRef points at.
type RefKind int

const (
	RefSignal RefKind = iota
	RefField
	RefScalarConst
	RefDomain
)

func (k RefKind) String() string {
	switch k {
	case RefSignal:
		return "sig"
	case RefField:
		return "field"
	case RefScalarConst:
		return "scalarConst"
	case RefDomain:
		return "domain"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// ValueRef is a packed handle to a compile-time value source: a signal
// expression id, a field expression id, a constant-pool id, or a domain id.
// SlotIdx is only meaningful for RefSignal (the ValueSlot the expression
// ultimately writes) — field/const/domain refs are resolved structurally
// through their own tables and carry SlotIdx = -1.
type ValueRef struct {
	Kind    RefKind
	ID      int
	SlotIdx ValueSlot
}

// Pack encodes the ValueRef into a single 64-bit handle: 8 bits kind, 28
// bits id, 28 bits slot index (biased by 1 so SlotIdx -1 round-trips).
func (v ValueRef) Pack() uint64 {
	return uint64(v.Kind)<<56 | uint64(uint32(v.ID))<<28 | uint64(uint32(v.SlotIdx+1))&0xFFFFFFF
}

// Unpack decodes a handle produced by Pack.
func Unpack(h uint64) ValueRef {
	kind := RefKind(h >> 56)
	id := int(int32(uint32(h>>28) & 0xFFFFFFF))
	slot := ValueSlot(int32(uint32(h)&0xFFFFFFF) - 1)
	return ValueRef{Kind: kind, ID: id, SlotIdx: slot}
}

func NoSlot() ValueSlot { return -1 }
