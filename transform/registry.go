// Package transform implements the adapter and lens registries (spec.md
// §4.1, §6): stateless type-converting adapters inserted automatically at
// link time, and stateless type-preserving lenses the user authors
// explicitly on an edge. Both compile directly to IR — there is no
// interpreted/closure fallback path.
package transform

import (
	"fmt"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// Kind distinguishes an adapter from a lens.
type Kind int

const (
	KindAdapter Kind = iota
	KindLens
)

// CompileFn lowers one transform step, given the incoming ValueRef and its
// resolved params, into IR producing the step's output ValueRef.
type CompileFn func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error)

// Def is one registered transform (spec.md §6's TransformDef).
type Def struct {
	ID          string
	Kind        Kind
	From, To    typesys.TypeDesc // for adapters; lenses preserve (From==To shape)
	Cost        int
	IsStateful  bool // lenses must always declare false (architectural invariant)
	Compile     CompileFn
}

// Registry holds every registered adapter and lens.
type Registry struct {
	adapters []Def
	lenses   map[string]Def
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{lenses: make(map[string]Def)}
}

// RegisterAdapter adds an adapter definition.
func (r *Registry) RegisterAdapter(d Def) {
	d.Kind = KindAdapter
	r.adapters = append(r.adapters, d)
}

// RegisterLens adds a lens definition. Panics if IsStateful is true — a
// stateful modifier is not a lens (spec.md §4.1); it must be authored as a
// real scheduled block via graph surgery at edit time instead.
func (r *Registry) RegisterLens(d Def) {
	if d.IsStateful {
		panic(fmt.Sprintf("transform: lens %q may not be stateful; stateful modifiers are blocks, not lenses", d.ID))
	}
	d.Kind = KindLens
	r.lenses[d.ID] = d
}

// Lens looks up a lens by id.
func (r *Registry) Lens(id string) (Def, bool) {
	d, ok := r.lenses[id]
	return d, ok
}

// AdapterChain is a resolved sequence of adapter ids bridging From to To.
type AdapterChain struct {
	Steps []Def
	Cost  int
}

// FindAdapterChain searches for the lowest-cost sequence of registered
// adapters bridging from -> to, subject to costBudget. Ties are broken by
// stable lexical id ordering at each expansion step (spec.md §4.1), which
// combined with a stable breadth-first-by-cost search makes the result
// deterministic across runs.
func (r *Registry) FindAdapterChain(from, to typesys.TypeDesc, costBudget int) (AdapterChain, bool) {
	if from.Equal(to) {
		return AdapterChain{}, true
	}

	type node struct {
		typ   typesys.TypeDesc
		cost  int
		chain []Def
	}

	sorted := make([]Def, len(r.adapters))
	copy(sorted, r.adapters)
	sortDefsByID(sorted)

	visited := map[typesys.TypeDesc]int{from: 0}
	frontier := []node{{typ: from, cost: 0}}

	for len(frontier) > 0 {
		var next []node
		for _, cur := range frontier {
			for _, a := range sorted {
				if !a.From.Equal(cur.typ) {
					continue
				}
				newCost := cur.cost + max(a.Cost, 1)
				if newCost > costBudget {
					continue
				}
				if prev, ok := visited[a.To]; ok && prev <= newCost {
					continue
				}
				visited[a.To] = newCost
				newChain := append(append([]Def{}, cur.chain...), a)
				if a.To.Equal(to) {
					return AdapterChain{Steps: newChain, Cost: newCost}, true
				}
				next = append(next, node{typ: a.To, cost: newCost, chain: newChain})
			}
		}
		frontier = next
	}
	return AdapterChain{}, false
}

func sortDefsByID(defs []Def) {
	for i := 1; i < len(defs); i++ {
		for j := i; j > 0 && defs[j].ID < defs[j-1].ID; j-- {
			defs[j], defs[j-1] = defs[j-1], defs[j]
		}
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
