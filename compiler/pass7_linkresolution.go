package compiler

import (
	"sort"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// resolveBusCombines is pass 7: reduce each bus's pre-sorted publisher
// values (collected by pass 6) into a single combine expression per the
// bus's declared CombineMode, then write the result into that bus's
// last-frame register so pass 6's StateRead consumers see it next frame
// (spec.md §4.9).
//
// Writers are sorted by (SortKey, EdgeID) before folding so the result is
// deterministic regardless of the order patch authoring produced the
// edges in — order only matters for "first"/"last", where it is the whole
// point.
func resolveBusCombines(tp *TypedPatch, lowered *LoweredProgram, b *ir.IRBuilder) *ErrorList {
	errs := &ErrorList{}

	byBus := make(map[string][]BusWrite)
	for _, w := range lowered.BusWrites {
		byBus[w.BusID] = append(byBus[w.BusID], w)
	}

	for busID, writers := range byBus {
		sort.SliceStable(writers, func(i, j int) bool {
			if writers[i].SortKey != writers[j].SortKey {
				return writers[i].SortKey < writers[j].SortKey
			}
			return writers[i].EdgeID < writers[j].EdgeID
		})

		mode := tp.BusMode[busID]
		values := make([]ir.ValueRef, len(writers))
		for i, w := range writers {
			values[i] = w.Value
		}

		combined, ok := foldCombine(b, mode, tp.BusCustomReducer[busID], values)
		if !ok {
			continue // no publishers this frame; register keeps last value
		}
		stateID, ok := lowered.BusStateIDs[busID]
		if !ok {
			continue
		}
		b.StateWrite(stateID, combined)
	}

	return errs
}

// foldCombine reduces a sorted slice of publisher values per mode. Returns
// ok=false if there is nothing to fold (no publishers fired this frame).
func foldCombine(b *ir.IRBuilder, mode typesys.CombineMode, customReducerID string, values []ir.ValueRef) (ir.ValueRef, bool) {
	if len(values) == 0 {
		return ir.ValueRef{}, false
	}

	switch mode {
	case typesys.CombineFirst:
		return values[0], true
	case typesys.CombineLast:
		return values[len(values)-1], true
	case typesys.CombineSum:
		return fold(b, ir.OpAdd, values), true
	case typesys.CombineMin:
		return fold(b, ir.OpMin, values), true
	case typesys.CombineMax:
		return fold(b, ir.OpMax, values), true
	case typesys.CombineOr:
		return fold(b, ir.OpMax, values), true
	case typesys.CombineAnd:
		return fold(b, ir.OpMin, values), true
	case typesys.CombineAverage:
		sum := fold(b, ir.OpAdd, values)
		count := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), float64(len(values)))
		return b.SigZip(ir.OpDiv, sum, count), true
	case typesys.CombineCustom:
		return fold(b, ir.SigOp("custom:"+customReducerID), values), true
	default:
		return values[0], true
	}
}

func fold(b *ir.IRBuilder, op ir.SigOp, values []ir.ValueRef) ir.ValueRef {
	acc := values[0]
	for _, v := range values[1:] {
		acc = b.SigZip(op, acc, v)
	}
	return acc
}
