package compiler

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchflow/patchgraph"
)

var _ = Describe("Cycle legality", func() {
	Context("when a non-stateful block feeds itself", func() {
		It("fails compilation with IllegalCycle", func() {
			regObjs, xforms := newTestRegistries()
			patch := &patchgraph.Patch{
				Blocks: []patchgraph.Block{
					{ID: "clock", Type: "TimeRoot.Infinite"},
					{ID: "osc", Type: "Oscillator", Params: map[string]any{"shape": "sine"}},
				},
				Edges: []patchgraph.Edge{
					{ID: "loop", From: patchgraph.PortEndpoint("osc", "value"), To: patchgraph.PortEndpoint("osc", "phase"), Enabled: true},
				},
			}

			_, err := Compile(patch, regObjs, xforms, nil)
			Expect(err).To(HaveOccurred())
			errs, ok := err.(*ErrorList)
			Expect(ok).To(BeTrue())
			Expect(errs.Errors).NotTo(BeEmpty())
			Expect(errs.Errors[0].Code).To(Equal(CodeIllegalCycle))
		})
	})

	Context("when a stateful block feeds itself", func() {
		It("compiles successfully, the stateful boundary legalizing the self-loop", func() {
			regObjs, xforms := newTestRegistries()
			patch := &patchgraph.Patch{
				Blocks: []patchgraph.Block{
					{ID: "clock", Type: "TimeRoot.Infinite"},
					{ID: "integ", Type: "IntegrateBlock"},
				},
				Edges: []patchgraph.Edge{
					{ID: "loop", From: patchgraph.PortEndpoint("integ", "out"), To: patchgraph.PortEndpoint("integ", "in"), Enabled: true},
				},
			}

			program, err := Compile(patch, regObjs, xforms, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(program).NotTo(BeNil())
			Expect(program.Schedule.Steps).NotTo(BeEmpty())
		})
	})
})

var _ = Describe("DebugIndex", func() {
	It("maps every signal-valued block output to its value slot", func() {
		regObjs, xforms := newTestRegistries()
		patch := &patchgraph.Patch{
			Blocks: []patchgraph.Block{
				{ID: "clock", Type: "TimeRoot.Finite", Params: map[string]any{"durationMs": 1000.0}},
			},
		}
		program, err := Compile(patch, regObjs, xforms, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(program.DebugIndex).To(HaveKey("clock#tAbsMs"))
		Expect(program.DebugIndex).To(HaveKey("clock#tModelMs"))
		Expect(program.DebugIndex).To(HaveKey("clock#progress01"))
	})
})
