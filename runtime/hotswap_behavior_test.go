package runtime

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/patchflow/blocks"
	"github.com/sarchlab/patchflow/compiler"
	"github.com/sarchlab/patchflow/patchgraph"
	"github.com/sarchlab/patchflow/transform"
)

func compileAccumulator(params map[string]any) *compiler.CompiledProgram {
	reg := blocks.NewRegistry()
	blocks.RegisterBuiltins(reg)
	xforms := transform.NewRegistry()
	transform.RegisterBuiltinAdapters(xforms)
	transform.RegisterBuiltinLenses(xforms)

	patch := &patchgraph.Patch{
		Blocks: []patchgraph.Block{
			{ID: "clock", Type: "TimeRoot.Infinite"},
			{ID: "src", Type: "ConstFloat", Params: map[string]any{"value": 1.0}},
			{ID: "intA", Type: "IntegrateBlock", Params: params},
		},
		Edges: []patchgraph.Edge{
			{ID: "e1", From: patchgraph.PortEndpoint("src", "out"), To: patchgraph.PortEndpoint("intA", "in"), Enabled: true},
		},
	}
	program, err := compiler.Compile(patch, reg, xforms, nil)
	if err != nil {
		panic(err)
	}
	return program
}

// S6 — Hot swap state preservation: an integrator at anchor "intA" keeps
// accumulating after a hot-swap to a freshly compiled program that declares
// the same anchor, rather than resetting to zero.
var _ = Describe("Component.Swap", func() {
	It("migrates an integrator's accumulated state across a hot-swap by anchor", func() {
		p1 := compileAccumulator(nil)
		comp := NewExecutorBuilder().
			WithEngine(sim.NewSerialEngine()).
			WithFreq(1 * sim.GHz).
			WithProgram(p1).
			Build("swapTest")

		var lastOut float64
		for i := 0; i < 10; i++ {
			_, err := comp.executor.RunFrame(float64(i) * 16)
			Expect(err).NotTo(HaveOccurred())
			lastOut = comp.executor.values.GetFloat(p1.DebugIndex["intA#out"])
		}
		Expect(lastOut).To(Equal(10.0))

		p2 := compileAccumulator(map[string]any{"initial": 0.0})
		migrated := comp.Swap(p2)
		Expect(migrated).To(BeEmpty(), "same anchor + same type should migrate fully, nothing newly initialized")

		_, err := comp.executor.RunFrame(160)
		Expect(err).NotTo(HaveOccurred())
		got := comp.executor.values.GetFloat(p2.DebugIndex["intA#out"])
		Expect(got).To(Equal(11.0), "post-swap frame must continue from the migrated accumulator, not reset to 0")
	})
})
