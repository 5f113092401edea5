// Package render assembles the per-frame RenderFrameIR/RenderPassIR the
// executor hands to the host renderer (spec.md §4.12, §6), and defines the
// single canonical color buffer encoding this spec supports.
package render

import "github.com/sarchlab/patchflow/ir"

// FrameIR is one frame's complete render output.
type FrameIR struct {
	TAbsMs   float64
	TModelMs float64
	Passes   []PassIR
}

// PassIR is one render sink's materialized draw data for a frame.
type PassIR struct {
	SinkType      ir.SinkKind
	InstanceCount int
	Buffers       map[string]Buffer
	Uniforms      map[string]any
}

// Buffer is a named, typed array view handed to the host renderer.
type Buffer struct {
	Format ir.BufferFormat
	// Floats holds f32/vec2f32/vec3f32/vec4f32 data, flattened
	// component-major (e.g. vec2f32 is [x0,y0,x1,y1,...]).
	Floats []float32
	// RGBA8 holds linear_premul_rgba8 data, one packed [4]byte per element.
	RGBA8 [][4]byte
}

// EncodeColorRGBA8 converts a straight-alpha linear color to the canonical
// linear_premul_rgba8 encoding (spec.md §4.12): clamp to [0,1], premultiply
// RGB by alpha, scale to [0,255], round, pack.
func EncodeColorRGBA8(r, g, b, a float64) [4]byte {
	r = clamp01(r)
	g = clamp01(g)
	b = clamp01(b)
	a = clamp01(a)
	return [4]byte{
		scaleByte(r * a),
		scaleByte(g * a),
		scaleByte(b * a),
		scaleByte(a),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func scaleByte(x float64) byte {
	v := x*255 + 0.5 // round to nearest
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return byte(v)
}
