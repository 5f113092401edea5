package render

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/patchflow/ir"
)

var _ = Describe("EncodeColorRGBA8", func() {
	Context("with a straight-alpha color inside [0,1]", func() {
		It("premultiplies RGB by alpha before scaling to bytes", func() {
			got := EncodeColorRGBA8(0.2, 0.4, 0.6, 0.5)
			Expect(got).To(Equal([4]byte{
				scaleByte(0.2 * 0.5),
				scaleByte(0.4 * 0.5),
				scaleByte(0.6 * 0.5),
				scaleByte(0.5),
			}))
		})
	})

	Context("with components outside [0,1]", func() {
		It("clamps before premultiplying, rather than wrapping or erroring", func() {
			got := EncodeColorRGBA8(-1, 2, 0.5, 3)
			Expect(got).To(Equal([4]byte{0, 255, 128, 255}))
		})
	})

	Context("with zero alpha", func() {
		It("zeroes every channel regardless of the source RGB", func() {
			got := EncodeColorRGBA8(1, 1, 1, 0)
			Expect(got).To(Equal([4]byte{0, 0, 0, 0}))
		})
	})
})

var _ = Describe("FrameIR assembly", func() {
	It("carries one Buffer per named pass output, keyed by buffer name", func() {
		frame := &FrameIR{
			TAbsMs: 250,
			Passes: []PassIR{
				{
					SinkType:      ir.SinkInstances2D,
					InstanceCount: 2,
					Buffers: map[string]Buffer{
						"pos": {Format: ir.FormatVec2F, Floats: []float32{0, 0, 10, 0}},
					},
				},
			},
		}
		Expect(frame.Passes).To(HaveLen(1))
		Expect(frame.Passes[0].Buffers).To(HaveKey("pos"))
		Expect(frame.Passes[0].Buffers["pos"].Floats).To(Equal([]float32{0, 0, 10, 0}))
	})
})
