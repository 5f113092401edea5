package compiler

import "github.com/sarchlab/patchflow/patchgraph"

// DepGraph is pass 4's output: one node per block, one edge per non-bus
// patch edge from source block to sink block (spec.md §4.5). Bus edges are
// excluded because bus combine breaks cycles at compile time by reading
// last-frame writer values.
type DepGraph struct {
	NumNodes int
	Adj      [][]NodeIndex // Adj[i] = nodes i has an edge to
}

func buildDepGraph(patch *patchgraph.Patch, idxMap *BlockIndexMap) *DepGraph {
	g := &DepGraph{NumNodes: idxMap.Len(), Adj: make([][]NodeIndex, idxMap.Len())}
	seen := make(map[[2]NodeIndex]bool)

	for _, e := range patch.Edges {
		if !e.Enabled {
			continue
		}
		if e.From.Kind != patchgraph.EndpointPort || e.To.Kind != patchgraph.EndpointPort {
			continue
		}
		fromIdx, ok1 := idxMap.IndexOf(e.From.BlockID)
		toIdx, ok2 := idxMap.IndexOf(e.To.BlockID)
		if !ok1 || !ok2 {
			continue
		}
		key := [2]NodeIndex{fromIdx, toIdx}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.Adj[fromIdx] = append(g.Adj[fromIdx], toIdx)
	}
	return g
}
