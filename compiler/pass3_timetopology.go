package compiler

import (
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/patchgraph"
)

func paramFloat(params map[string]any, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		}
	}
	return def
}

// timeTopology is pass 3: locate the unique TimeRoot block and extract its
// TimeModel (spec.md §3.2, §4.4).
func timeTopology(patch *patchgraph.Patch) (string, ir.TimeModel, *ErrorList) {
	errs := &ErrorList{}
	var roots []patchgraph.Block
	for _, b := range patch.Blocks {
		if b.Type == "TimeRoot.Finite" || b.Type == "TimeRoot.Infinite" {
			roots = append(roots, b)
		}
	}

	if len(roots) == 0 {
		errs.Add(&CompileError{Code: CodeMissingTimeRoot})
		return "", ir.TimeModel{}, errs
	}
	if len(roots) > 1 {
		ids := make([]string, len(roots))
		for i, r := range roots {
			ids[i] = r.ID
		}
		errs.Add(&CompileError{Code: CodeMultipleTimeRoots, NodeIDs: ids})
		return "", ir.TimeModel{}, errs
	}

	root := roots[0]
	var model ir.TimeModel
	if root.Type == "TimeRoot.Finite" {
		model = ir.TimeModel{Kind: ir.TimeFinite, DurationMs: paramFloat(root.Params, "durationMs", 1000)}
	} else {
		model = ir.TimeModel{Kind: ir.TimeInfinite, WindowMs: paramFloat(root.Params, "windowMs", 0)}
	}
	return root.ID, model, errs
}
