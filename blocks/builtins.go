package blocks

import (
	"fmt"
	"math"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

const twoPi = 2 * math.Pi

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

func paramInt(params map[string]any, key string, def int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return def
}

func paramString(params map[string]any, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// RegisterBuiltins installs the complete closed primitive set into r.
func RegisterBuiltins(r *Registry) {
	registerTimeRoots(r)
	registerDefaultSources(r)
	registerDomainAndField(r)
	registerOscillators(r)
	registerStateful(r)
	registerConstants(r)
	registerRenderSinks(r)
	registerModulationRack(r)
}

func registerTimeRoots(r *Registry) {
	timeOutputs := []PortDecl{
		{ID: "tAbsMs", Type: typesys.Sig(typesys.DomainTimeMs)},
		{ID: "tModelMs", Type: typesys.Sig(typesys.DomainTimeMs)},
		{ID: "progress01", Type: typesys.Sig(typesys.DomainPhase)},
		{ID: "endEvent", Type: typesys.Event(typesys.DomainBoolean)},
	}

	r.Register(BlockTypeDecl{
		Type:       "TimeRoot.Finite",
		Outputs:    timeOutputs,
		Capability: CapTime,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			b := ctx.Builder
			tAbs := ir.ValueRef{Kind: ir.RefSignal, ID: b.Sig.TimeAbs(), SlotIdx: ir.NoSlot()}
			tModel := ir.ValueRef{Kind: ir.RefSignal, ID: b.Sig.TimeModel(), SlotIdx: ir.NoSlot()}
			progress := ir.ValueRef{Kind: ir.RefSignal, ID: b.Sig.Phase01(), SlotIdx: ir.NoSlot()}
			one := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), 1.0)
			stillRunning := b.SigZip(ir.OpLT, progress, one)
			endEvent := b.SigZip(ir.OpSub, one, stillRunning)
			return map[string]ir.ValueRef{
				"tAbsMs":     tAbs,
				"tModelMs":   tModel,
				"progress01": progress,
				"endEvent":   endEvent,
			}, nil
		},
	})

	r.Register(BlockTypeDecl{
		Type:       "TimeRoot.Infinite",
		Outputs:    timeOutputs[:2], // no progress01/endEvent for Infinite
		Capability: CapTime,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			b := ctx.Builder
			tAbs := ir.ValueRef{Kind: ir.RefSignal, ID: b.Sig.TimeAbs(), SlotIdx: ir.NoSlot()}
			tModel := ir.ValueRef{Kind: ir.RefSignal, ID: b.Sig.TimeModel(), SlotIdx: ir.NoSlot()}
			return map[string]ir.ValueRef{"tAbsMs": tAbs, "tModelMs": tModel}, nil
		},
	})
}

func registerDefaultSources(r *Registry) {
	r.Register(BlockTypeDecl{
		Type:       "DSConstSignalFloat",
		Outputs:    []PortDecl{{ID: "out", Type: typesys.Sig(typesys.DomainFloat)}},
		Capability: CapIdentity,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			v := paramFloat(params, "value", 0)
			ref := ctx.Builder.SigConst(typesys.Sig(typesys.DomainFloat), v)
			return map[string]ir.ValueRef{"out": ref}, nil
		},
	})

	r.Register(BlockTypeDecl{
		Type:       "DSConstSignalVec2",
		Outputs:    []PortDecl{{ID: "out", Type: typesys.Sig(typesys.DomainVec2)}},
		Capability: CapIdentity,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			x := paramFloat(params, "x", 0)
			y := paramFloat(params, "y", 0)
			ref := ctx.Builder.SigConst(typesys.Sig(typesys.DomainVec2), [2]float64{x, y})
			return map[string]ir.ValueRef{"out": ref}, nil
		},
	})

	r.Register(BlockTypeDecl{
		Type:       "DSDomainN",
		Outputs:    []PortDecl{{ID: "out", Type: typesys.Scalar(typesys.DomainDomain)}},
		Capability: CapIdentity,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			n := paramInt(params, "n", 1)
			_, ref := ctx.Builder.AllocDomain(n)
			return map[string]ir.ValueRef{"out": ref}, nil
		},
	})
}

func registerDomainAndField(r *Registry) {
	r.Register(BlockTypeDecl{
		Type:       "DomainN",
		Outputs:    []PortDecl{{ID: "out", Type: typesys.Scalar(typesys.DomainDomain)}},
		Capability: CapPure,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			n := paramInt(params, "n", 1)
			_, ref := ctx.Builder.AllocDomain(n)
			return map[string]ir.ValueRef{"out": ref}, nil
		},
	})

	r.Register(BlockTypeDecl{
		Type: "PositionMapGrid",
		Inputs: []PortDecl{
			{ID: "domain", Type: typesys.Scalar(typesys.DomainDomain), DefaultSourceType: "DSDomainN", DefaultParams: map[string]any{"n": 1}},
		},
		Outputs:    []PortDecl{{ID: "pos", Type: typesys.Field(typesys.DomainVec2)}},
		Capability: CapPure,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			dom, ok := inputs["domain"]
			if !ok || dom.Kind != ir.RefDomain {
				return nil, fmt.Errorf("PositionMapGrid: domain input must be a domain value")
			}
			rows := paramInt(params, "rows", 1)
			cols := paramInt(params, "cols", 1)
			spacing := paramFloat(params, "spacing", 1)
			spacingX := paramFloat(params, "spacingX", spacing)
			spacingY := paramFloat(params, "spacingY", spacing)
			originX := paramFloat(params, "originX", 0)
			originY := paramFloat(params, "originY", 0)
			if origin, ok := params["origin"].([]any); ok && len(origin) == 2 {
				originX = toFloat(origin[0])
				originY = toFloat(origin[1])
			}
			exprID := ctx.Builder.Field.PosGrid(dom.ID, rows, cols, spacingX, spacingY, originX, originY)
			return map[string]ir.ValueRef{"pos": {Kind: ir.RefField, ID: exprID, SlotIdx: ir.NoSlot()}}, nil
		},
	})

	r.Register(BlockTypeDecl{
		Type: "HashField",
		Inputs: []PortDecl{
			{ID: "domain", Type: typesys.Scalar(typesys.DomainDomain), DefaultSourceType: "DSDomainN", DefaultParams: map[string]any{"n": 1}},
		},
		Outputs:    []PortDecl{{ID: "value", Type: typesys.Field(typesys.DomainFloat)}},
		Capability: CapPure,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			dom := inputs["domain"]
			seed := uint32(paramInt(params, "seed", 0))
			exprID := ctx.Builder.Field.Hash01ByID(dom.ID, seed)
			return map[string]ir.ValueRef{"value": {Kind: ir.RefField, ID: exprID, SlotIdx: ir.NoSlot()}}, nil
		},
	})
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func registerOscillators(r *Registry) {
	r.Register(BlockTypeDecl{
		Type: "PhaseClock",
		Inputs: []PortDecl{
			{ID: "tAbsMs", Type: typesys.Sig(typesys.DomainTimeMs), DefaultSourceType: "DSConstSignalFloat", DefaultParams: map[string]any{"value": 0.0}},
		},
		Outputs:    []PortDecl{{ID: "phase", Type: typesys.Sig(typesys.DomainPhase)}},
		Capability: CapPure,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			b := ctx.Builder
			period := paramFloat(params, "period", 1000)
			if period == 0 {
				period = 1000
			}
			periodRef := b.ScalarConst(typesys.Scalar(typesys.DomainDuration), period)
			divRef := b.SigZip(ir.OpDiv, inputs["tAbsMs"], periodRef)

			mode := paramString(params, "mode", "loop")
			var phase ir.ValueRef
			switch mode {
			case "pingpong":
				half := b.SigMap(ir.OpFract, divRef)
				two := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), 2.0)
				doubled := b.SigZip(ir.OpMul, half, two)
				oneRef := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), 1.0)
				shifted := b.SigZip(ir.OpSub, doubled, oneRef)
				absShifted := b.SigMap(ir.OpAbs, shifted)
				phase = b.SigZip(ir.OpSub, oneRef, absShifted)
			default:
				phase = b.SigMap(ir.OpFract, divRef)
			}
			return map[string]ir.ValueRef{"phase": phase}, nil
		},
	})

	r.Register(BlockTypeDecl{
		Type: "Oscillator",
		Inputs: []PortDecl{
			{ID: "phase", Type: typesys.Sig(typesys.DomainPhase), DefaultSourceType: "DSConstSignalFloat", DefaultParams: map[string]any{"value": 0.0}},
		},
		Outputs:    []PortDecl{{ID: "value", Type: typesys.Sig(typesys.DomainFloat)}},
		Capability: CapPure,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			b := ctx.Builder
			shape := paramString(params, "shape", "sine")
			phase := inputs["phase"]
			twoPiRef := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), twoPi)
			angle := b.SigZip(ir.OpMul, phase, twoPiRef)

			var value ir.ValueRef
			switch shape {
			case "cosine":
				value = b.SigMap(ir.OpCos, angle)
			case "sine":
				value = b.SigMap(ir.OpSin, angle)
			default:
				return nil, fmt.Errorf("Oscillator: unknown shape %q", shape)
			}
			return map[string]ir.ValueRef{"value": value}, nil
		},
	})
}

func registerStateful(r *Registry) {
	r.Register(BlockTypeDecl{
		Type: "IntegrateBlock",
		Inputs: []PortDecl{
			{ID: "in", Type: typesys.Sig(typesys.DomainFloat), DefaultSourceType: "DSConstSignalFloat", DefaultParams: map[string]any{"value": 0.0}},
		},
		Outputs:            []PortDecl{{ID: "out", Type: typesys.Sig(typesys.DomainFloat)}},
		Capability:         CapState,
		Stateful:           true,
		DefaultScrubPolicy: ScrubReset,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			b := ctx.Builder
			initial := paramFloat(params, "initial", 0)
			stateID := b.AllocStateId(typesys.Sig(typesys.DomainFloat), ctx.Anchor)
			// StateRead yields last frame's written value. New state slots
			// start at the domain's zero value (runtime.NewStateStore);
			// `initial` is parsed but not applied to the slot.
			prev := b.StateRead(stateID)
			_ = initial
			sum := b.SigZip(ir.OpAdd, prev, inputs["in"])
			written := b.StateWrite(stateID, sum)
			return map[string]ir.ValueRef{"out": written}, nil
		},
	})
}

func registerConstants(r *Registry) {
	r.Register(BlockTypeDecl{
		Type:       "ConstFloat",
		Outputs:    []PortDecl{{ID: "out", Type: typesys.Sig(typesys.DomainFloat)}},
		Capability: CapPure,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			v := paramFloat(params, "value", 0)
			ref := ctx.Builder.SigConst(typesys.Sig(typesys.DomainFloat), v)
			return map[string]ir.ValueRef{"out": ref}, nil
		},
	})
}

func registerRenderSinks(r *Registry) {
	r.Register(BlockTypeDecl{
		Type: "RenderInstances2D",
		Inputs: []PortDecl{
			{ID: "pos", Type: typesys.Field(typesys.DomainVec2)},
			{ID: "size", Type: typesys.Sig(typesys.DomainFloat), DefaultSourceType: "DSConstSignalFloat", DefaultParams: map[string]any{"value": 1.0}},
			{ID: "fill", Type: typesys.Sig(typesys.DomainColor), DefaultSourceType: "DSConstSignalVec2", DefaultParams: map[string]any{"x": 1.0, "y": 1.0}},
		},
		Capability: CapRender,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			// RenderInstances2D has no data outputs. Pass 6 collects it as
			// a render sink by its CapRender capability tag rather than an
			// output port, and pass 8 (compiler/pass8_schedule.go) builds
			// its render plan.
			return map[string]ir.ValueRef{}, nil
		},
	})
}

// modulationRackRails names the reserved structural buses a ModulationRack
// auto-publishes (the Open Question decision: these are gated on the
// presence of a ModulationRack block, not reserved bus names a patch could
// also declare by hand).
var modulationRackRails = []PortDecl{
	{ID: "phaseA", Type: typesys.Sig(typesys.DomainPhase)},
	{ID: "pulse", Type: typesys.Event(typesys.DomainBoolean)},
	{ID: "energy", Type: typesys.Sig(typesys.DomainFloat)},
	{ID: "palette", Type: typesys.Sig(typesys.DomainColor)},
}

// ModulationRackRails exposes the rail port declarations to the compiler's
// rails pass, which wires them onto global buses (compiler/rails.go).
func ModulationRackRails() []PortDecl {
	return append([]PortDecl{}, modulationRackRails...)
}

func registerModulationRack(r *Registry) {
	r.Register(BlockTypeDecl{
		Type: "ModulationRack",
		Inputs: []PortDecl{
			{ID: "tAbsMs", Type: typesys.Sig(typesys.DomainTimeMs), DefaultSourceType: "DSConstSignalFloat", DefaultParams: map[string]any{"value": 0.0}},
		},
		Outputs:    modulationRackRails,
		Capability: CapIO,
		Lower: func(ctx *LowerCtx, params map[string]any, inputs map[string]ir.ValueRef) (map[string]ir.ValueRef, error) {
			b := ctx.Builder
			period := paramFloat(params, "period", 1000)
			if period == 0 {
				period = 1000
			}
			periodRef := b.ScalarConst(typesys.Scalar(typesys.DomainDuration), period)
			divRef := b.SigZip(ir.OpDiv, inputs["tAbsMs"], periodRef)
			phaseA := b.SigMap(ir.OpFract, divRef)

			threshold := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), paramFloat(params, "pulseWidth", 0.1))
			pulse := b.SigZip(ir.OpLT, phaseA, threshold)

			twoPiRef := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), twoPi)
			angle := b.SigZip(ir.OpMul, phaseA, twoPiRef)
			raw := b.SigMap(ir.OpSin, angle)
			half := b.ScalarConst(typesys.Scalar(typesys.DomainFloat), 0.5)
			shifted := b.SigZip(ir.OpMul, raw, half)
			energy := b.SigZip(ir.OpAdd, shifted, half)

			hueDegrees := b.SigZip(ir.OpMul, phaseA, b.ScalarConst(typesys.Scalar(typesys.DomainFloat), 360.0))
			base := b.SigConst(typesys.Sig(typesys.DomainColor), [4]float64{1, 1, 1, 1})
			palette := b.SigZip(ir.OpHueShift, base, hueDegrees)

			return map[string]ir.ValueRef{
				"phaseA":  phaseA,
				"pulse":   pulse,
				"energy":  energy,
				"palette": palette,
			}, nil
		},
	})
}
