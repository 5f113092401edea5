package ir

import (
	"bytes"
	"encoding/gob"
)

// SigOp names a unary/binary scalar operation usable in map/zip/mix nodes.
type SigOp string

const (
	OpAdd     SigOp = "add"
	OpSub     SigOp = "sub"
	OpMul     SigOp = "mul"
	OpDiv     SigOp = "div"
	OpMin     SigOp = "min"
	OpMax     SigOp = "max"
	OpNeg     SigOp = "neg"
	OpAbs     SigOp = "abs"
	OpSin     SigOp = "sin"
	OpCos     SigOp = "cos"
	OpFract   SigOp = "fract"
	OpClamp01 SigOp = "clamp01"
	OpStep    SigOp = "step"
	OpGT      SigOp = "gt"
	OpLT      SigOp = "lt"
	OpFloor   SigOp = "floor"
	// OpRotate2D rotates a vec2 (A) by an angle in radians (B).
	OpRotate2D SigOp = "rotate2d"
	// OpHueShift rotates a color's (A) hue by degrees (B).
	OpHueShift SigOp = "hueShift"
)

// SigExprKind discriminates the node shapes in the signal expression DAG
// (spec.md §3.3).
type SigExprKind int

const (
	SigConst SigExprKind = iota
	SigTimeAbs
	SigTimeModel
	SigPhase01
	SigZip
	SigMap
	SigMix
	SigReduceField
	SigStateRead
	SigStateWrite
)

// SigExpr is one node of the signal expression DAG. Only the fields that
// apply to Kind are meaningful; this mirrors a compact tagged-union IR node
// rather than a family of interfaces, so the DAG stays one flat, cache
// friendly slice.
type SigExpr struct {
	Kind SigExprKind

	// SigConst
	ConstID int

	// SigZip / SigMap / SigMix
	Op   SigOp
	A, B int // indices into the owning IRBuilder's sig expr table; -1 if unused
	Cond int // SigMix condition expr index

	// SigReduceField
	ReduceFn int // typesys.ReducerFn
	FieldID  int

	// SigStateRead / SigStateWrite
	State StateId
	Src   int // SigStateWrite source expr index
}

// SigGraph is the owning table of SigExpr nodes for one compiled program.
type SigGraph struct {
	nodes []SigExpr
}

// NewSigGraph creates an empty graph.
func NewSigGraph() *SigGraph { return &SigGraph{} }

func (g *SigGraph) add(e SigExpr) int {
	g.nodes = append(g.nodes, e)
	return len(g.nodes) - 1
}

// Const appends a const-read node.
func (g *SigGraph) Const(constID int) int { return g.add(SigExpr{Kind: SigConst, ConstID: constID}) }

// TimeAbs appends a read of the canonical tAbsMs slot.
func (g *SigGraph) TimeAbs() int { return g.add(SigExpr{Kind: SigTimeAbs}) }

// TimeModel appends a read of the canonical tModelMs slot.
func (g *SigGraph) TimeModel() int { return g.add(SigExpr{Kind: SigTimeModel}) }

// Phase01 appends a read of the canonical progress01 slot.
func (g *SigGraph) Phase01() int { return g.add(SigExpr{Kind: SigPhase01}) }

// Zip appends a binary elementwise node.
func (g *SigGraph) Zip(op SigOp, a, b int) int {
	return g.add(SigExpr{Kind: SigZip, Op: op, A: a, B: b})
}

// Map appends a unary elementwise node.
func (g *SigGraph) Map(op SigOp, src int) int {
	return g.add(SigExpr{Kind: SigMap, Op: op, A: src})
}

// Mix appends a conditional select node.
func (g *SigGraph) Mix(cond, a, b int) int {
	return g.add(SigExpr{Kind: SigMix, Cond: cond, A: a, B: b})
}

// ReduceField appends a field->signal reducer node.
func (g *SigGraph) ReduceField(fn int, fieldID int) int {
	return g.add(SigExpr{Kind: SigReduceField, ReduceFn: fn, FieldID: fieldID})
}

// StateRead appends a read of last frame's value for a state slot.
func (g *SigGraph) StateRead(id StateId) int {
	return g.add(SigExpr{Kind: SigStateRead, State: id})
}

// StateWrite appends a write of this frame's value into a state slot.
func (g *SigGraph) StateWrite(id StateId, src int) int {
	return g.add(SigExpr{Kind: SigStateWrite, State: id, Src: src})
}

// Node returns the node at index i.
func (g *SigGraph) Node(i int) SigExpr { return g.nodes[i] }

// Len returns the number of nodes.
func (g *SigGraph) Len() int { return len(g.nodes) }

// GobEncode/GobDecode let cachestore persist a SigGraph despite its field
// being unexported.
func (g *SigGraph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g.nodes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *SigGraph) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&g.nodes)
}
