// Package patchgraph defines the raw, author-facing patch graph: blocks,
// edges, buses, and the distinguished TimeRoot block. This is the input to
// the compiler (spec.md §6's RawPatch) and mirrors the teacher's
// core/program.go YAML structures — a flat, yaml-tagged wire format the
// editor (out of scope here) produces and the compiler consumes.
package patchgraph

import (
	"github.com/rs/xid"
	"gopkg.in/yaml.v3"
)

// BlockRole is a tagged union: a block is either user-authored, or one of a
// small set of structural roles the compiler itself synthesizes.
type BlockRole struct {
	Kind   StructuralKind `yaml:"kind"`
	Anchor string         `yaml:"anchor,omitempty"`
}

// StructuralKind distinguishes user blocks from compiler-synthesized ones.
type StructuralKind string

const (
	RoleUser          StructuralKind = "User"
	RoleDefaultSource StructuralKind = "DefaultSource"
	RoleWireState     StructuralKind = "WireState"
	RoleGlobalBus     StructuralKind = "GlobalBus"
	RoleLens          StructuralKind = "Lens"
)

// IsStructural reports whether the role is anything other than user-authored.
func (r BlockRole) IsStructural() bool { return r.Kind != RoleUser && r.Kind != "" }

// Block is a node in the patch graph.
type Block struct {
	ID     string         `yaml:"id"`
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params,omitempty"`
	Role   BlockRole      `yaml:"role,omitempty"`
}

// EndpointKind distinguishes a port endpoint from a bus endpoint.
type EndpointKind int

const (
	EndpointPort EndpointKind = iota
	EndpointBus
)

// Endpoint is either a (block, port) pair or a bus reference.
type Endpoint struct {
	Kind    EndpointKind `yaml:"-"`
	BlockID string       `yaml:"blockId,omitempty"`
	SlotID  string       `yaml:"slotId,omitempty"`
	BusID   string       `yaml:"busId,omitempty"`
}

// PortEndpoint builds a port Endpoint.
func PortEndpoint(blockID, slotID string) Endpoint {
	return Endpoint{Kind: EndpointPort, BlockID: blockID, SlotID: slotID}
}

// BusEndpoint builds a bus Endpoint.
func BusEndpoint(busID string) Endpoint {
	return Endpoint{Kind: EndpointBus, BusID: busID}
}

// MarshalYAML renders the endpoint as whichever shape it actually holds, so
// that round-tripped patches don't carry the zero value of the field they
// don't use.
func (e Endpoint) MarshalYAML() (interface{}, error) {
	if e.Kind == EndpointBus {
		return struct {
			BusID string `yaml:"busId"`
		}{e.BusID}, nil
	}
	return struct {
		BlockID string `yaml:"blockId"`
		SlotID  string `yaml:"slotId"`
	}{e.BlockID, e.SlotID}, nil
}

// UnmarshalYAML infers the endpoint kind from which fields are present.
func (e *Endpoint) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		BlockID string `yaml:"blockId"`
		SlotID  string `yaml:"slotId"`
		BusID   string `yaml:"busId"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.BusID != "" {
		*e = BusEndpoint(raw.BusID)
		return nil
	}
	*e = PortEndpoint(raw.BlockID, raw.SlotID)
	return nil
}

// EdgeRole records why an edge exists.
type EdgeRole string

const (
	EdgeUser    EdgeRole = "User"
	EdgeDefault EdgeRole = "Default"
	EdgeBusTap  EdgeRole = "BusTap"
	EdgeAuto    EdgeRole = "Auto"
)

// TransformStep is one adapter or lens application on an edge.
type TransformStep struct {
	ID     string         `yaml:"id"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Edge is a directed connection between two endpoints.
type Edge struct {
	ID         string          `yaml:"id"`
	From       Endpoint        `yaml:"from"`
	To         Endpoint        `yaml:"to"`
	Transforms []TransformStep `yaml:"transforms,omitempty"`
	Enabled    bool            `yaml:"enabled"`
	Role       EdgeRole        `yaml:"role,omitempty"`
	SortKey    int             `yaml:"sortKey,omitempty"`
}

// Bus is a named channel with a declared type and combine mode.
type Bus struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`        // resolved against typesys in pass 2
	CombineMode string `yaml:"combineMode"` // "last"|"first"|"sum"|"average"|"min"|"max"|"or"|"and"|"custom:<id>"
}

// Settings carries per-patch compile-time configuration.
type Settings struct {
	Seed uint32 `yaml:"seed"`
}

// Patch is the full author-facing graph: the compiler's input.
type Patch struct {
	Blocks   []Block  `yaml:"blocks"`
	Edges    []Edge   `yaml:"edges"`
	Buses    []Bus    `yaml:"buses"`
	Settings Settings `yaml:"settings"`
}

// NewUserID mints a fresh identifier for a user-authored entity (block, edge,
// bus). Structural (compiler-synthesized) entities never use this — they
// derive deterministic IDs from an anchor hash (see compiler/anchor.go) so
// that incremental recompiles keep stable identity across edits.
func NewUserID() string {
	return xid.New().String()
}

// Marshal renders the patch as canonical YAML.
func (p *Patch) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// Unmarshal parses a patch from YAML.
func Unmarshal(data []byte) (*Patch, error) {
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
