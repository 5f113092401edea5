package compiler

import "github.com/sarchlab/patchflow/patchgraph"

// tarjanSCC runs Tarjan's strongly-connected-components algorithm over the
// dependency graph, returning components in reverse-topological order (the
// order Tarjan naturally produces), each listed as dense NodeIndex values.
func tarjanSCC(g *DepGraph) [][]NodeIndex {
	index := make([]int, g.NumNodes)
	lowlink := make([]int, g.NumNodes)
	onStack := make([]bool, g.NumNodes)
	for i := range index {
		index[i] = -1
	}

	var stack []NodeIndex
	var sccs [][]NodeIndex
	counter := 0

	var strongconnect func(v NodeIndex)
	strongconnect = func(v NodeIndex) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Adj[v] {
			if index[w] == -1 {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
		}

		if lowlink[v] == index[v] {
			var comp []NodeIndex
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, comp)
		}
	}

	for v := 0; v < g.NumNodes; v++ {
		if index[v] == -1 {
			strongconnect(NodeIndex(v))
		}
	}
	return sccs
}

// checkCycleLegality is pass 5: any SCC of size > 1 must contain at least
// one stateBoundary block (spec.md §4.5, §9). Errors for every illegal SCC
// are accumulated before returning.
func checkCycleLegality(patch *patchgraph.Patch, idxMap *BlockIndexMap, g *DepGraph, isStateBoundary func(blockID string) bool) *ErrorList {
	errs := &ErrorList{}
	sccs := tarjanSCC(g)
	for _, comp := range sccs {
		if len(comp) > 1 {
			hasBoundary := false
			ids := make([]string, len(comp))
			for i, n := range comp {
				id := idxMap.BlockIDAt(n)
				ids[i] = id
				if isStateBoundary(id) {
					hasBoundary = true
				}
			}
			if !hasBoundary {
				errs.Add(&CompileError{Code: CodeIllegalCycle, NodeIDs: ids})
			}
			continue
		}

		// A size-1 SCC is still a real cycle if it is a self-loop (a block
		// wired directly back into one of its own inputs); spec.md §8's
		// testable property 4 covers any cyclic subgraph, not just SCCs of
		// size > 1, so self-loops get the same stateBoundary requirement.
		if len(comp) == 1 {
			v := comp[0]
			for _, w := range g.Adj[v] {
				if w == v {
					id := idxMap.BlockIDAt(v)
					if !isStateBoundary(id) {
						errs.Add(&CompileError{Code: CodeIllegalCycle, NodeIDs: []string{id}})
					}
					break
				}
			}
		}
	}
	return errs
}

// topologicalOrder returns a topological ordering of blocks respecting SCC
// boundaries: within an SCC (a legal stateful cycle), blocks are ordered so
// that the stateBoundary block's StateRead is available before its
// dependents are lowered, which holds trivially since StateRead never
// depends on another block's output for the current frame.
func topologicalOrder(g *DepGraph) []NodeIndex {
	visited := make([]bool, g.NumNodes)
	inStack := make([]bool, g.NumNodes)
	var order []NodeIndex

	var visit func(v NodeIndex)
	visit = func(v NodeIndex) {
		if visited[v] {
			return
		}
		if inStack[v] {
			// Part of a legal SCC already validated by pass 5; break the
			// recursion here and let the caller's SCC-aware scheduling
			// handle ordering within the component.
			return
		}
		inStack[v] = true
		for _, w := range g.Adj[v] {
			visit(w)
		}
		inStack[v] = false
		visited[v] = true
		order = append(order, v)
	}

	for v := 0; v < g.NumNodes; v++ {
		visit(NodeIndex(v))
	}

	// visit appends post-order (dependencies first is what we want for
	// blocks lowering producers before consumers), but our walk above
	// appends v after its dependents are visited — reverse to get
	// producers-before-consumers order.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}
