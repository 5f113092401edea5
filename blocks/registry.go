// Package blocks implements the closed block-type registry (spec.md §6):
// every block type's port declarations, capability tag, and single lowering
// function. There is no fallback path — an unregistered type is a compile
// error, and every registered type must supply Lower.
package blocks

import (
	"fmt"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// Capability is the closed set of non-pure powers a block may claim
// (spec.md §9's "closed primitive set + capability tags").
type Capability string

const (
	CapTime     Capability = "time"
	CapIdentity Capability = "identity"
	CapState    Capability = "state"
	CapRender   Capability = "render"
	CapIO       Capability = "io"
	CapPure     Capability = "pure"
)

// PortDecl declares one input or output port of a block type.
type PortDecl struct {
	ID   string
	Type typesys.TypeDesc
	// DefaultSourceType names the structural block type pass 0 instantiates
	// when this input port has no inbound edge. Empty for output ports.
	DefaultSourceType string
	// DefaultParams seeds the synthesized default-source block's params.
	DefaultParams map[string]any
}

// ScrubPolicy names how a stateful block behaves when the host scrubs
// tAbsMs backward or to an arbitrary point (spec.md §4.11).
type ScrubPolicy string

const (
	ScrubReset      ScrubPolicy = "reset"
	ScrubPreserve   ScrubPolicy = "preserve"
	ScrubReintegrate ScrubPolicy = "reintegrate"
)

// LowerCtx is the per-block context passed to a Lower function.
type LowerCtx struct {
	Builder  *ir.IRBuilder
	BlockID  string
	Anchor   string // stable anchor for structural-ID / state-mapping purposes
}

// LowerFunc emits IR for one block given its resolved inputs, returning the
// ValueRef for each declared output port.
type LowerFunc func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error)

// BlockTypeDecl is one registered block type (spec.md §6's BlockTypeDecl).
type BlockTypeDecl struct {
	Type       string
	Inputs     []PortDecl
	Outputs    []PortDecl
	Capability Capability
	Stateful   bool
	DefaultScrubPolicy ScrubPolicy
	Lower      LowerFunc
}

// InputByID looks up a declared input port.
func (d BlockTypeDecl) InputByID(id string) (PortDecl, bool) {
	for _, p := range d.Inputs {
		if p.ID == id {
			return p, true
		}
	}
	return PortDecl{}, false
}

// OutputByID looks up a declared output port.
func (d BlockTypeDecl) OutputByID(id string) (PortDecl, bool) {
	for _, p := range d.Outputs {
		if p.ID == id {
			return p, true
		}
	}
	return PortDecl{}, false
}

// Registry is the closed set of block types known to the compiler. Only
// block types registered before compile are usable; an unknown type is
// UnknownBlockType (spec.md §6).
type Registry struct {
	decls map[string]BlockTypeDecl
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decls: make(map[string]BlockTypeDecl)}
}

// capabilityAllowlist is the fixed set of block types permitted to claim a
// non-pure capability. Registering a non-pure capability for a type not on
// this list is an architecture violation and panics at registration time
// (a programmer error caught at startup, never a runtime/compile error).
var capabilityAllowlist = map[string]Capability{
	"TimeRoot.Finite":     CapTime,
	"TimeRoot.Infinite":   CapTime,
	"PhaseClock":          CapTime,
	"IntegrateBlock":      CapState,
	"SlewLimiter":         CapState,
	"Delay":               CapState,
	"Hysteresis":          CapState,
	"RenderInstances2D":   CapRender,
	"RenderPaths":         CapRender,
	"RenderLayer":         CapRender,
	"DSConstSignalFloat":  CapIdentity,
	"DSConstSignalVec2":   CapIdentity,
	"DSConstField":        CapIdentity,
	"DSDomainN":           CapIdentity,
	"ModulationRack":      CapIO,
}

// Register adds a block type declaration. It panics if a non-pure
// capability is claimed by a type not on the allowlist, or if the type is
// already registered — both are programmer errors, not patch errors.
func (r *Registry) Register(decl BlockTypeDecl) {
	if decl.Lower == nil {
		panic(fmt.Sprintf("blocks: type %q registered with nil Lower", decl.Type))
	}
	if decl.Capability != CapPure {
		allowed, ok := capabilityAllowlist[decl.Type]
		if !ok || allowed != decl.Capability {
			panic(fmt.Sprintf("blocks: type %q claims non-pure capability %q but is not allowlisted for it", decl.Type, decl.Capability))
		}
	}
	if _, exists := r.decls[decl.Type]; exists {
		panic(fmt.Sprintf("blocks: type %q already registered", decl.Type))
	}
	r.decls[decl.Type] = decl
}

// Lookup returns the declaration for a registered type.
func (r *Registry) Lookup(typ string) (BlockTypeDecl, bool) {
	d, ok := r.decls[typ]
	return d, ok
}

// All returns every registered declaration, for diagnostics/tooling.
func (r *Registry) All() []BlockTypeDecl {
	out := make([]BlockTypeDecl, 0, len(r.decls))
	for _, d := range r.decls {
		out = append(out, d)
	}
	return out
}
