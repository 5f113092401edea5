package compiler

import (
	"encoding/hex"
	"hash/fnv"
)

// anchorHash derives a stable, deterministic identifier for a structural
// artifact from its anchor parts (spec.md §9: "structural blocks carry
// deterministic IDs derived from a hash of their anchor"). Using a content
// hash rather than a counter means the same anchor always maps to the same
// ID across recompiles of an edited patch, which is what lets hot-swap
// (§4.13) map old state to new state without churn.
func anchorHash(kind string, parts ...string) string {
	h := fnv.New64a()
	h.Write([]byte(kind))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return "anchor_" + hex.EncodeToString(sum)
}

// defaultSourceAnchor names the anchor for pass 0's synthesized default
// source feeding the given (blockID, portID).
func defaultSourceAnchor(blockID, portID string) string {
	return anchorHash("defaultSource", blockID, portID)
}
