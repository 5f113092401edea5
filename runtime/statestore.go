package runtime

import "github.com/sarchlab/patchflow/ir"

// StateStore holds last-frame values for every allocated ir.StateId, the
// persistence that survives across Tick calls (spec.md §4.9: "StateStore
// (persists across frames)"). Value slots live and die with a single
// frame; state slots are the only thing that crosses the boundary.
type StateStore struct {
	table  map[ir.StateId]ir.StateEntry
	values map[ir.StateId]any
}

// NewStateStore seeds a store from a compiled program's state table, every
// entry starting at its domain's zero value.
func NewStateStore(table map[ir.StateId]ir.StateEntry) *StateStore {
	ss := &StateStore{table: table, values: make(map[ir.StateId]any, len(table))}
	for id, entry := range table {
		ss.values[id] = zeroOf(entry.Type)
	}
	return ss
}

// Get returns the last frame's value for a state id.
func (ss *StateStore) Get(id ir.StateId) any { return ss.values[id] }

// Set overwrites the value that will be read as "last frame's value" from
// the next Tick onward.
func (ss *StateStore) Set(id ir.StateId, v any) { ss.values[id] = v }

// Migrate rebuilds a StateStore for a newly compiled program's state table,
// carrying over values from the old store wherever the new table has an
// entry with a matching anchor (spec.md §4.13's compatible/partial swap).
// It reports which anchors from the new table had no match in the old one,
// so the caller can raise a StateMigrated signal for a partial swap.
func (ss *StateStore) Migrate(newTable map[ir.StateId]ir.StateEntry) (*StateStore, []ir.StateId) {
	oldByAnchor := make(map[string]ir.StateId, len(ss.table))
	for id, entry := range ss.table {
		oldByAnchor[entry.Anchor] = id
	}

	next := &StateStore{table: newTable, values: make(map[ir.StateId]any, len(newTable))}
	var initialized []ir.StateId
	for newID, entry := range newTable {
		if oldID, ok := oldByAnchor[entry.Anchor]; ok {
			next.values[newID] = ss.values[oldID]
			continue
		}
		next.values[newID] = zeroOf(entry.Type)
		initialized = append(initialized, newID)
	}
	return next, initialized
}
