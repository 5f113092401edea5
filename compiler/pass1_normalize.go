package compiler

import (
	"sort"

	"github.com/sarchlab/patchflow/patchgraph"
)

// normalize is pass 1: assign dense block indices in stable (original)
// order, and canonicalize the edge array by a stable sort on
// (toBlockIdx, toPortIdx, fromBlockIdx, fromPortIdx) (spec.md §3.2, §4.2).
// Bus endpoints take block index -1, so they sort before all port endpoints
// at a given position, ordered by bus id lexically; the ordering stays total
// and deterministic.
func normalize(patch *patchgraph.Patch) (*patchgraph.Patch, *BlockIndexMap) {
	ids := make([]string, len(patch.Blocks))
	for i, b := range patch.Blocks {
		ids[i] = b.ID
	}
	idxMap := newBlockIndexMap(ids)

	edges := append([]patchgraph.Edge{}, patch.Edges...)

	key := func(e patchgraph.Edge) (int, string, int, string) {
		toBlockIdx, toPort := -1, e.To.BusID
		if e.To.Kind == patchgraph.EndpointPort {
			if idx, ok := idxMap.IndexOf(e.To.BlockID); ok {
				toBlockIdx = int(idx)
			}
			toPort = e.To.SlotID
		}
		fromBlockIdx, fromPort := -1, e.From.BusID
		if e.From.Kind == patchgraph.EndpointPort {
			if idx, ok := idxMap.IndexOf(e.From.BlockID); ok {
				fromBlockIdx = int(idx)
			}
			fromPort = e.From.SlotID
		}
		return toBlockIdx, toPort, fromBlockIdx, fromPort
	}

	sort.SliceStable(edges, func(i, j int) bool {
		tb1, tp1, fb1, fp1 := key(edges[i])
		tb2, tp2, fb2, fp2 := key(edges[j])
		if tb1 != tb2 {
			return tb1 < tb2
		}
		if tp1 != tp2 {
			return tp1 < tp2
		}
		if fb1 != fb2 {
			return fb1 < fb2
		}
		return fp1 < fp2
	})

	out := &patchgraph.Patch{
		Blocks:   patch.Blocks,
		Edges:    edges,
		Buses:    patch.Buses,
		Settings: patch.Settings,
	}
	return out, idxMap
}
