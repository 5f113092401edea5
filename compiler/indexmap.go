package compiler

// NodeIndex is a dense array position assigned to a block by pass 1.
type NodeIndex int

// PortIndex is a dense slot position within a block's port list.
type PortIndex int

// BlockIndexMap is pass 1's output: a stable mapping from block/port id to
// dense indices, used by every later pass for cheap array-indexed lookups
// instead of repeated map lookups by string id.
type BlockIndexMap struct {
	blockIDToIndex map[string]NodeIndex
	indexToBlockID []string
}

func newBlockIndexMap(blockIDsInOrder []string) *BlockIndexMap {
	m := &BlockIndexMap{
		blockIDToIndex: make(map[string]NodeIndex, len(blockIDsInOrder)),
		indexToBlockID: append([]string{}, blockIDsInOrder...),
	}
	for i, id := range blockIDsInOrder {
		m.blockIDToIndex[id] = NodeIndex(i)
	}
	return m
}

// IndexOf returns the dense index for a block id.
func (m *BlockIndexMap) IndexOf(blockID string) (NodeIndex, bool) {
	idx, ok := m.blockIDToIndex[blockID]
	return idx, ok
}

// BlockIDAt returns the block id at a dense index.
func (m *BlockIndexMap) BlockIDAt(idx NodeIndex) string { return m.indexToBlockID[idx] }

// Len returns the number of blocks.
func (m *BlockIndexMap) Len() int { return len(m.indexToBlockID) }
