package transform

import (
	"fmt"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

var broadcastableDomains = []typesys.Domain{
	typesys.DomainFloat, typesys.DomainVec2, typesys.DomainVec3, typesys.DomainVec4,
	typesys.DomainColor, typesys.DomainPhase, typesys.DomainBoolean,
	typesys.DomainDuration, typesys.DomainTimeMs,
}

// RegisterBuiltinAdapters installs the scalar->signal and signal->field
// broadcast families (spec.md §3.1), plus a handful of concrete
// cross-domain conversions used by the built-in blocks.
func RegisterBuiltinAdapters(r *Registry) {
	for _, d := range broadcastableDomains {
		d := d
		r.RegisterAdapter(Def{
			ID:   "scalarToSignal:" + d.String(),
			From: typesys.Scalar(d),
			To:   typesys.Sig(d),
			Cost: 1,
			Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
				if in.Kind != ir.RefScalarConst {
					return ir.ValueRef{}, fmt.Errorf("scalarToSignal: input is not a scalar constant")
				}
				c := b.Consts.Get(in.ID)
				return b.SigConst(typesys.Sig(d), c.Value), nil
			},
		})

		r.RegisterAdapter(Def{
			ID:   "signalToField:" + d.String(),
			From: typesys.Sig(d),
			To:   typesys.Field(d),
			Cost: 1,
			Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
				domainID, ok := params["domainID"].(int)
				if !ok {
					return ir.ValueRef{}, fmt.Errorf("signalToField: no domain context available (AdapterNotFound)")
				}
				return b.FieldBroadcast(domainID, in), nil
			},
		})
	}

	r.RegisterAdapter(Def{
		ID:   "phaseToFloat",
		From: typesys.Sig(typesys.DomainPhase),
		To:   typesys.Sig(typesys.DomainFloat),
		Cost: 1,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			// Representationally identical; phase is a float constrained to
			// [0,1) — the adapter only relabels the domain tag.
			return ir.ValueRef{Kind: ir.RefSignal, ID: in.ID, SlotIdx: in.SlotIdx}, nil
		},
	})

	r.RegisterAdapter(Def{
		ID:   "floatToPhase",
		From: typesys.Sig(typesys.DomainFloat),
		To:   typesys.Sig(typesys.DomainPhase),
		Cost: 1,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			return b.SigMap(ir.OpFract, in), nil
		},
	})

	r.RegisterAdapter(Def{
		ID:   "numberToDurationMs",
		From: typesys.Sig(typesys.DomainFloat),
		To:   typesys.Sig(typesys.DomainDuration),
		Cost: 1,
		Compile: func(b *ir.IRBuilder, in ir.ValueRef, params map[string]any) (ir.ValueRef, error) {
			return ir.ValueRef{Kind: ir.RefSignal, ID: in.ID, SlotIdx: in.SlotIdx}, nil
		},
	})
}
