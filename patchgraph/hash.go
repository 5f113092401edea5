package patchgraph

import (
	"encoding/hex"
	"hash/fnv"
)

// CanonicalHash derives a stable content hash of the patch's canonical YAML
// encoding, the key cachestore.Store uses to memoize compiled programs
// (SPEC_FULL.md §5). Two patches that marshal identically hash identically,
// since Marshal always emits fields in the struct's declared order; the
// order of blocks, edges and buses in their slices is part of the encoding,
// so reordering them changes the hash.
func (p *Patch) CanonicalHash() (string, error) {
	data, err := p.Marshal()
	if err != nil {
		return "", err
	}
	h := fnv.New64a()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}
