package ir

import (
	"bytes"
	"encoding/gob"
)

// FieldCombine names a field combine reduction (distinct from a bus's
// typesys.CombineMode, though the names overlap in meaning).
type FieldCombine string

const (
	FieldCombineSum FieldCombine = "sum"
	FieldCombineAvg FieldCombine = "avg"
	FieldCombineMin FieldCombine = "min"
	FieldCombineMax FieldCombine = "max"
)

// FieldExprKind discriminates field DAG node shapes (spec.md §3.3).
type FieldExprKind int

const (
	FieldConst FieldExprKind = iota
	FieldBroadcastSig
	FieldHash01ByID
	FieldPosGrid
	FieldMap
	FieldZip
	FieldCombineNode
	FieldSource
)

// FieldExpr is one node of the field expression DAG.
type FieldExpr struct {
	Kind FieldExprKind

	DomainID int

	// FieldConst
	ConstID int

	// FieldBroadcastSig
	SigExprID int

	// FieldHash01ByID
	Seed uint32

	// FieldPosGrid
	Rows, Cols int
	SpacingX   float64
	SpacingY   float64
	OriginX    float64
	OriginY    float64

	// FieldMap / FieldZip
	Op   SigOp
	A, B int

	// FieldCombineNode
	Mode  FieldCombine
	Terms []int

	// FieldSource
	Tag string
}

// FieldGraph is the owning table of FieldExpr nodes for one compiled
// program.
type FieldGraph struct {
	nodes []FieldExpr
}

// NewFieldGraph creates an empty graph.
func NewFieldGraph() *FieldGraph { return &FieldGraph{} }

func (g *FieldGraph) add(e FieldExpr) int {
	g.nodes = append(g.nodes, e)
	return len(g.nodes) - 1
}

// Const appends a uniform-constant field node.
func (g *FieldGraph) Const(domainID, constID int) int {
	return g.add(FieldExpr{Kind: FieldConst, DomainID: domainID, ConstID: constID})
}

// BroadcastSig appends a node that broadcasts a signal's current value to
// every element of the domain.
func (g *FieldGraph) BroadcastSig(domainID, sigExprID int) int {
	return g.add(FieldExpr{Kind: FieldBroadcastSig, DomainID: domainID, SigExprID: sigExprID})
}

// Hash01ByID appends a deterministic per-element hash node.
func (g *FieldGraph) Hash01ByID(domainID int, seed uint32) int {
	return g.add(FieldExpr{Kind: FieldHash01ByID, DomainID: domainID, Seed: seed})
}

// PosGrid appends a deterministic grid-position node.
func (g *FieldGraph) PosGrid(domainID, rows, cols int, spacingX, spacingY, originX, originY float64) int {
	return g.add(FieldExpr{
		Kind: FieldPosGrid, DomainID: domainID,
		Rows: rows, Cols: cols,
		SpacingX: spacingX, SpacingY: spacingY,
		OriginX: originX, OriginY: originY,
	})
}

// Map appends a unary elementwise field node.
func (g *FieldGraph) Map(op SigOp, domainID, src int) int {
	return g.add(FieldExpr{Kind: FieldMap, DomainID: domainID, Op: op, A: src})
}

// Zip appends a binary elementwise field node.
func (g *FieldGraph) Zip(op SigOp, domainID, a, b int) int {
	return g.add(FieldExpr{Kind: FieldZip, DomainID: domainID, Op: op, A: a, B: b})
}

// Combine appends a multi-term elementwise reduction field node.
func (g *FieldGraph) Combine(domainID int, mode FieldCombine, terms []int) int {
	return g.add(FieldExpr{Kind: FieldCombineNode, DomainID: domainID, Mode: mode, Terms: terms})
}

// Source appends an opaque tagged source node (e.g. image/SVG sample,
// resolved entirely at compile time — never blocks at frame time).
func (g *FieldGraph) Source(domainID int, tag string) int {
	return g.add(FieldExpr{Kind: FieldSource, DomainID: domainID, Tag: tag})
}

// Node returns the node at index i.
func (g *FieldGraph) Node(i int) FieldExpr { return g.nodes[i] }

// Len returns the number of nodes.
func (g *FieldGraph) Len() int { return len(g.nodes) }

// GobEncode/GobDecode let cachestore persist a FieldGraph despite its field
// being unexported.
func (g *FieldGraph) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g.nodes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *FieldGraph) GobDecode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&g.nodes)
}
