package transform

import (
	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

func scalarConst(b *ir.IRBuilder, v float64) ir.ValueRef {
	return b.ScalarConst(typesys.Scalar(typesys.DomainFloat), v)
}

func paramF(params map[string]any, key string, def float64) float64 {
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

func paramB(params map[string]any, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if bb, ok := v.(bool); ok {
			return bb
		}
	}
	return def
}

// RegisterBuiltinLenses installs the stateless, type-preserving parametric
// transforms named in spec.md §4.1. None of these allocate state — any
// modifier that would need memory (slew, delay, hysteresis) is an
// infrastructure block instead (see blocks/builtins.go's stateful
// registrations), never a lens.
func RegisterBuiltinLenses(r *Registry) {
	r.RegisterLens(Def{
		ID:         "scale",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			scale := scalarConst(b, paramF(params, "scale", 1))
			offset := scalarConst(b, paramF(params, "offset", 0))
			scaled := b.SigZip(ir.OpMul, in, scale)
			return b.SigZip(ir.OpAdd, scaled, offset), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "clamp",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			lo := scalarConst(b, paramF(params, "min", 0))
			hi := scalarConst(b, paramF(params, "max", 1))
			clampedLo := b.SigZip(ir.OpMax, in, lo)
			return b.SigZip(ir.OpMin, clampedLo, hi), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "quantize",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			step := paramF(params, "step", 1)
			if step == 0 {
				step = 1
			}
			stepRef := scalarConst(b, step)
			divided := b.SigZip(ir.OpDiv, in, stepRef)
			floored := b.SigMap(ir.OpFloor, divided)
			return b.SigZip(ir.OpMul, floored, stepRef), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "mapRange",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			inMin := paramF(params, "inMin", 0)
			inMax := paramF(params, "inMax", 1)
			outMin := paramF(params, "outMin", 0)
			outMax := paramF(params, "outMax", 1)
			span := inMax - inMin
			if span == 0 {
				span = 1
			}
			shifted := b.SigZip(ir.OpSub, in, scalarConst(b, inMin))
			normalized := b.SigZip(ir.OpDiv, shifted, scalarConst(b, span))
			scaled := b.SigZip(ir.OpMul, normalized, scalarConst(b, outMax-outMin))
			return b.SigZip(ir.OpAdd, scaled, scalarConst(b, outMin)), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "polarity",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			if paramB(params, "invert", false) {
				return b.SigMap(ir.OpNeg, in), nil
			}
			return in, nil
		},
	})

	r.RegisterLens(Def{
		ID:         "deadzone",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			threshold := scalarConst(b, paramF(params, "threshold", 0))
			absIn := b.SigMap(ir.OpAbs, in)
			cond := b.SigZip(ir.OpLT, absIn, threshold)
			zero := scalarConst(b, 0)
			return b.SigMix(cond, zero, in), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "hueShift",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			degrees := scalarConst(b, paramF(params, "degrees", 0))
			return b.SigZip(ir.OpHueShift, in, degrees), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "rotate2d",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			angle := scalarConst(b, paramF(params, "angleRad", 0))
			return b.SigZip(ir.OpRotate2D, in, angle), nil
		},
	})

	r.RegisterLens(Def{
		ID:         "vec2GainBias",
		IsStateful: false,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			gain := b.ScalarConst(typesys.Scalar(typesys.DomainVec2), [2]float64{
				paramF(params, "gainX", 1), paramF(params, "gainY", 1),
			})
			bias := b.ScalarConst(typesys.Scalar(typesys.DomainVec2), [2]float64{
				paramF(params, "biasX", 0), paramF(params, "biasY", 0),
			})
			scaled := b.SigZip(ir.OpMul, in, gain)
			return b.SigZip(ir.OpAdd, scaled, bias), nil
		},
	})
}
