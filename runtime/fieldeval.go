package runtime

import (
	"hash/fnv"
	"math"

	"github.com/sarchlab/patchflow/ir"
)

// fieldEvaluator walks a FieldGraph on demand, materializing each node into
// a pooled Buffer at most once per evaluator (spec.md §4.12's
// map/zip/combine element-wise rules). Each call site builds its own
// evaluator, so a node shared by two call sites in one frame is computed
// once per call site. memo maps field node id to its buffer — append-only
// node order means every operand index is already resolved by the time a
// node references it, so no visited-set is needed to avoid infinite
// recursion.
type fieldEvaluator struct {
	graph  *ir.FieldGraph
	consts *ir.ConstPool
	scope  *Scope
	evalSig func(sigExprID int) any
	memo   map[int]*Buffer
}

func newFieldEvaluator(graph *ir.FieldGraph, consts *ir.ConstPool, scope *Scope, evalSig func(int) any) *fieldEvaluator {
	return &fieldEvaluator{graph: graph, consts: consts, scope: scope, evalSig: evalSig, memo: make(map[int]*Buffer)}
}

// materialize evaluates field node id into a buffer of the given format and
// element count, memoizing by node id for this evaluator's lifetime.
func (fe *fieldEvaluator) materialize(id int, format ir.BufferFormat, count int) *Buffer {
	if buf, ok := fe.memo[id]; ok {
		return buf
	}
	n := fe.graph.Node(id)
	buf := fe.scope.Acquire(format, count)

	switch n.Kind {
	case ir.FieldConst:
		c := fe.consts.Get(n.ConstID)
		v := constValue(c.Type, c.Value)
		for i := range buf.Values {
			buf.Values[i] = v
		}
	case ir.FieldBroadcastSig:
		v := fe.evalSig(n.SigExprID)
		for i := range buf.Values {
			buf.Values[i] = v
		}
	case ir.FieldHash01ByID:
		for i := range buf.Values {
			buf.Values[i] = hash01(uint32(i), n.Seed)
		}
	case ir.FieldPosGrid:
		for i := range buf.Values {
			row := i / n.Cols
			col := i % n.Cols
			buf.Values[i] = Vec2{
				X: n.OriginX + float64(col)*n.SpacingX,
				Y: n.OriginY + float64(row)*n.SpacingY,
			}
		}
	case ir.FieldMap:
		src := fe.materialize(n.A, format, count)
		for i, v := range src.Values {
			buf.Values[i] = applyUnary(n.Op, v)
		}
	case ir.FieldZip:
		a := fe.materialize(n.A, format, count)
		b := fe.materialize(n.B, format, count)
		for i := range buf.Values {
			buf.Values[i] = applyBinary(n.Op, a.Values[i], b.Values[i])
		}
	case ir.FieldCombineNode:
		if len(n.Terms) == 0 {
			break
		}
		acc := fe.materialize(n.Terms[0], format, count)
		accVals := append([]any(nil), acc.Values...)
		for _, term := range n.Terms[1:] {
			t := fe.materialize(term, format, count)
			for i := range accVals {
				accVals[i] = combineFieldOp(n.Mode, accVals[i], t.Values[i])
			}
		}
		if n.Mode == ir.FieldCombineAvg {
			scale := 1.0 / float64(len(n.Terms))
			for i := range accVals {
				accVals[i] = mapFloat(accVals[i], func(x float64) float64 { return x * scale })
			}
		}
		copy(buf.Values, accVals)
	case ir.FieldSource:
		// resolved entirely at compile time in principle; runtime falls
		// back to zero-filled since no compile-time sampler is wired yet.
	}

	fe.memo[id] = buf
	return buf
}

func combineFieldOp(mode ir.FieldCombine, a, b any) any {
	switch mode {
	case ir.FieldCombineSum, ir.FieldCombineAvg:
		return zipFloat(a, b, func(x, y float64) float64 { return x + y })
	case ir.FieldCombineMin:
		return zipFloat(a, b, math.Min)
	case ir.FieldCombineMax:
		return zipFloat(a, b, math.Max)
	default:
		return a
	}
}

// hash01 is a deterministic per-element hash in [0,1), stable across runs
// for the same (id, seed) pair (spec.md §4.12).
func hash01(id uint32, seed uint32) float64 {
	h := fnv.New32a()
	var buf [8]byte
	buf[0] = byte(id)
	buf[1] = byte(id >> 8)
	buf[2] = byte(id >> 16)
	buf[3] = byte(id >> 24)
	buf[4] = byte(seed)
	buf[5] = byte(seed >> 8)
	buf[6] = byte(seed >> 16)
	buf[7] = byte(seed >> 24)
	h.Write(buf[:])
	return float64(h.Sum32()) / (float64(math.MaxUint32) + 1)
}
