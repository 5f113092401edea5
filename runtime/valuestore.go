// Package runtime executes a compiler.CompiledProgram frame by frame: it
// walks the linear Schedule, evaluates signal/field expressions into a
// typed ValueStore, persists StateStore entries across frames, and emits a
// render.FrameIR every frame (spec.md §4.9, §4.11-§4.13).
package runtime

import (
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// ValueStore is the dense, per-frame signal value array indexed by
// ir.ValueSlot, typed by the compiled program's TypeTable. It holds exactly
// one frame's worth of data — slots are overwritten every frame and never
// persist (spec.md §4.9's ordering guarantees).
type ValueStore struct {
	types  *ir.TypeTable
	values []any
}

// NewValueStore allocates a store sized to the type table, zero-valued per
// slot's domain.
func NewValueStore(types *ir.TypeTable) *ValueStore {
	vs := &ValueStore{types: types, values: make([]any, types.Len())}
	for i := 0; i < types.Len(); i++ {
		vs.values[ir.ValueSlot(i)] = zeroOf(types.TypeOf(ir.ValueSlot(i)))
	}
	return vs
}

// Get returns the current value at slot.
func (vs *ValueStore) Get(slot ir.ValueSlot) any {
	if slot == ir.NoSlot() {
		return nil
	}
	return vs.values[slot]
}

// Set writes the current value at slot.
func (vs *ValueStore) Set(slot ir.ValueSlot, v any) {
	if slot == ir.NoSlot() {
		return
	}
	vs.values[slot] = v
}

// GetFloat is a convenience accessor for scalar/phase/boolean-as-float
// slots, the common case for uniforms and scalar ops.
func (vs *ValueStore) GetFloat(slot ir.ValueSlot) float64 {
	return asFloat(vs.Get(slot))
}

func zeroOf(t typesys.TypeDesc) any {
	switch t.Domain {
	case typesys.DomainVec2:
		return Vec2{}
	case typesys.DomainVec3:
		return Vec3{}
	case typesys.DomainVec4:
		return Vec4{}
	case typesys.DomainColor:
		return Color{}
	case typesys.DomainBoolean:
		return false
	default:
		return 0.0
	}
}

// Vec2/Vec3/Vec4/Color are the runtime's concrete representations of the
// corresponding typesys domains — plain value types so they copy cleanly
// through the value store and buffer pool without aliasing.
type Vec2 struct{ X, Y float64 }
type Vec3 struct{ X, Y, Z float64 }
type Vec4 struct{ X, Y, Z, W float64 }

// Color is linear, straight (non-premultiplied) [0,1] RGBA; premultiplication
// only happens at buffer-encode time (spec.md §4.12).
type Color struct{ R, G, B, A float64 }

// constValue converts a TypedConst's compile-time literal representation
// (plain float64, bool, or a fixed-size float64 array, the shapes blocks
// and lenses intern via ScalarConst/SigConst/FieldConst) into the runtime's
// own Vec2/Vec3/Vec4/Color value types. Domain decides the shape since a
// raw [4]float64 is ambiguous between vec4 and color.
func constValue(t typesys.TypeDesc, raw any) any {
	switch t.Domain {
	case typesys.DomainVec2:
		if a, ok := raw.([2]float64); ok {
			return Vec2{X: a[0], Y: a[1]}
		}
	case typesys.DomainVec3:
		if a, ok := raw.([3]float64); ok {
			return Vec3{X: a[0], Y: a[1], Z: a[2]}
		}
	case typesys.DomainVec4:
		if a, ok := raw.([4]float64); ok {
			return Vec4{X: a[0], Y: a[1], Z: a[2], W: a[3]}
		}
	case typesys.DomainColor:
		if a, ok := raw.([4]float64); ok {
			return Color{R: a[0], G: a[1], B: a[2], A: a[3]}
		}
	}
	return raw
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case bool:
		if x {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return false
	}
}
