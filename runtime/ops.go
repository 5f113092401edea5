package runtime

import (
	"math"

	"github.com/sarchlab/patchflow/ir"
	"github.com/sarchlab/patchflow/typesys"
)

// applyUnary evaluates a SigOp with one operand (spec.md §4.9's SigEval;
// §4.12's field map reuses the same op table element-wise).
func applyUnary(op ir.SigOp, a any) any {
	switch op {
	case ir.OpNeg:
		return mapFloat(a, func(x float64) float64 { return -x })
	case ir.OpAbs:
		return mapFloat(a, math.Abs)
	case ir.OpSin:
		return mapFloat(a, math.Sin)
	case ir.OpCos:
		return mapFloat(a, math.Cos)
	case ir.OpFract:
		return mapFloat(a, fract)
	case ir.OpClamp01:
		return mapFloat(a, func(x float64) float64 { return clamp(x, 0, 1) })
	case ir.OpFloor:
		return mapFloat(a, math.Floor)
	default:
		return a
	}
}

// applyBinary evaluates a SigOp with two operands.
func applyBinary(op ir.SigOp, a, b any) any {
	switch op {
	case ir.OpAdd:
		return zipFloat(a, b, func(x, y float64) float64 { return x + y })
	case ir.OpSub:
		return zipFloat(a, b, func(x, y float64) float64 { return x - y })
	case ir.OpMul:
		return zipFloat(a, b, func(x, y float64) float64 { return x * y })
	case ir.OpDiv:
		return zipFloat(a, b, func(x, y float64) float64 {
			if y == 0 {
				return math.Inf(int(math.Copysign(1, x)))
			}
			return x / y
		})
	case ir.OpMin:
		return zipFloat(a, b, math.Min)
	case ir.OpMax:
		return zipFloat(a, b, math.Max)
	case ir.OpStep:
		edge, x := asFloat(a), asFloat(b)
		if x < edge {
			return 0.0
		}
		return 1.0
	case ir.OpGT:
		return asFloat(a) > asFloat(b)
	case ir.OpLT:
		return asFloat(a) < asFloat(b)
	case ir.OpRotate2D:
		v, _ := a.(Vec2)
		theta := asFloat(b)
		s, c := math.Sin(theta), math.Cos(theta)
		return Vec2{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
	case ir.OpHueShift:
		col, _ := a.(Color)
		return hueShift(col, asFloat(b))
	default:
		return a
	}
}

// applyMix evaluates a SigMix conditional-select node.
func applyMix(cond, a, b any) any {
	if asBool(cond) {
		return a
	}
	return b
}

func fract(x float64) float64 { return x - math.Floor(x) }

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// mapFloat applies a scalar function element-wise across whatever domain
// value is given (float, vec2/3/4, or color channel-wise).
func mapFloat(v any, f func(float64) float64) any {
	switch x := v.(type) {
	case Vec2:
		return Vec2{f(x.X), f(x.Y)}
	case Vec3:
		return Vec3{f(x.X), f(x.Y), f(x.Z)}
	case Vec4:
		return Vec4{f(x.X), f(x.Y), f(x.Z), f(x.W)}
	case Color:
		return Color{f(x.R), f(x.G), f(x.B), f(x.A)}
	default:
		return f(asFloat(v))
	}
}

// zipFloat applies a binary scalar function element-wise. A scalar second
// operand broadcasts across a vector/color first operand.
func zipFloat(a, b any, f func(float64, float64) float64) any {
	switch x := a.(type) {
	case Vec2:
		y, isVec := b.(Vec2)
		if !isVec {
			s := asFloat(b)
			return Vec2{f(x.X, s), f(x.Y, s)}
		}
		return Vec2{f(x.X, y.X), f(x.Y, y.Y)}
	case Vec3:
		y, isVec := b.(Vec3)
		if !isVec {
			s := asFloat(b)
			return Vec3{f(x.X, s), f(x.Y, s), f(x.Z, s)}
		}
		return Vec3{f(x.X, y.X), f(x.Y, y.Y), f(x.Z, y.Z)}
	case Vec4:
		y, isVec := b.(Vec4)
		if !isVec {
			s := asFloat(b)
			return Vec4{f(x.X, s), f(x.Y, s), f(x.Z, s), f(x.W, s)}
		}
		return Vec4{f(x.X, y.X), f(x.Y, y.Y), f(x.Z, y.Z), f(x.W, y.W)}
	case Color:
		y, isCol := b.(Color)
		if !isCol {
			s := asFloat(b)
			return Color{f(x.R, s), f(x.G, s), f(x.B, s), f(x.A, s)}
		}
		return Color{f(x.R, y.R), f(x.G, y.G), f(x.B, y.B), f(x.A, y.A)}
	default:
		return f(asFloat(a), asFloat(b))
	}
}

// hueShift rotates a color's hue by degrees in HSV space, holding
// saturation and value fixed — used by ModulationRack's palette rail and
// the hueShift lens.
func hueShift(c Color, degrees float64) Color {
	h, s, v := rgbToHSV(c.R, c.G, c.B)
	h = math.Mod(h+degrees, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := hsvToRGB(h, s, v)
	return Color{R: r, G: g, B: b, A: c.A}
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	delta := max - min
	if max == 0 {
		return 0, 0, v
	}
	s = delta / max
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	case b:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r1, g1, b1 float64
	switch {
	case h < 60:
		r1, g1, b1 = c, x, 0
	case h < 120:
		r1, g1, b1 = x, c, 0
	case h < 180:
		r1, g1, b1 = 0, c, x
	case h < 240:
		r1, g1, b1 = 0, x, c
	case h < 300:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	return r1 + m, g1 + m, b1 + m
}

// reducerFnOf converts a SigReduceField node's raw int tag back to a typed
// typesys.ReducerFn.
func reducerFnOf(raw int) typesys.ReducerFn { return typesys.ReducerFn(raw) }

func reduceFloats(fn typesys.ReducerFn, vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	switch fn {
	case typesys.ReduceSum:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum
	case typesys.ReduceAvg:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	case typesys.ReduceMin:
		m := vals[0]
		for _, v := range vals[1:] {
			m = math.Min(m, v)
		}
		return m
	case typesys.ReduceMax:
		m := vals[0]
		for _, v := range vals[1:] {
			m = math.Max(m, v)
		}
		return m
	default:
		return 0
	}
}
