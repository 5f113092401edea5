// Package typesys defines the closed type universe shared by the patch
// compiler and the frame runtime: the (World, Domain) pairs every port,
// slot, and value carries, and the structural equality/compatibility rules
// between them.
package typesys

import "fmt"

// World classifies how many values a type carries per frame.
type World int

const (
	// WorldScalar is a compile-time constant, known before the first frame.
	WorldScalar World = iota
	// WorldSignal carries exactly one value per frame.
	WorldSignal
	// WorldField carries one value per element of a Domain, per frame.
	WorldField
	// WorldEvent is a discrete, frame-local trigger.
	WorldEvent
)

func (w World) String() string {
	switch w {
	case WorldScalar:
		return "scalar"
	case WorldSignal:
		return "signal"
	case WorldField:
		return "field"
	case WorldEvent:
		return "event"
	default:
		return fmt.Sprintf("World(%d)", int(w))
	}
}

// Domain is the value domain of a type: the kind of number/handle it holds.
type Domain int

const (
	DomainFloat Domain = iota
	DomainVec2
	DomainVec3
	DomainVec4
	DomainColor
	// DomainPhase is a float constrained to [0,1).
	DomainPhase
	DomainBoolean
	// DomainDuration is a duration in milliseconds.
	DomainDuration
	// DomainTimeMs is an absolute/model time in milliseconds.
	DomainTimeMs
	// DomainDomain is an opaque element-population handle.
	DomainDomain
	DomainRenderTree
	DomainPath
)

func (d Domain) String() string {
	switch d {
	case DomainFloat:
		return "float"
	case DomainVec2:
		return "vec2"
	case DomainVec3:
		return "vec3"
	case DomainVec4:
		return "vec4"
	case DomainColor:
		return "color"
	case DomainPhase:
		return "phase"
	case DomainBoolean:
		return "boolean"
	case DomainDuration:
		return "duration"
	case DomainTimeMs:
		return "timeMs"
	case DomainDomain:
		return "domain"
	case DomainRenderTree:
		return "renderTree"
	case DomainPath:
		return "path"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// TypeDesc is the full type carried by a port, slot, or value. Semantics is
// an optional free-form tag (e.g. "phase(0..1)") carried for diagnostics; it
// never changes the physical encoding or equality of the type.
type TypeDesc struct {
	World     World
	Domain    Domain
	Semantics string
}

// Equal reports structural equality on (World, Domain); Semantics is
// informational only and never participates in equality.
func (t TypeDesc) Equal(o TypeDesc) bool {
	return t.World == o.World && t.Domain == o.Domain
}

func (t TypeDesc) String() string {
	if t.Semantics != "" {
		return fmt.Sprintf("%s<%s %q>", t.World, t.Domain, t.Semantics)
	}
	return fmt.Sprintf("%s<%s>", t.World, t.Domain)
}

// Sig builds a signal TypeDesc of the given domain.
func Sig(d Domain) TypeDesc { return TypeDesc{World: WorldSignal, Domain: d} }

// Field builds a field TypeDesc of the given domain.
func Field(d Domain) TypeDesc { return TypeDesc{World: WorldField, Domain: d} }

// Scalar builds a scalar TypeDesc of the given domain.
func Scalar(d Domain) TypeDesc { return TypeDesc{World: WorldScalar, Domain: d} }

// Event builds an event TypeDesc of the given domain.
func Event(d Domain) TypeDesc { return TypeDesc{World: WorldEvent, Domain: d} }

// ReducerFn names the explicit reducer a field->signal conversion requires.
type ReducerFn int

const (
	ReduceSum ReducerFn = iota
	ReduceAvg
	ReduceMin
	ReduceMax
)

func (r ReducerFn) String() string {
	switch r {
	case ReduceSum:
		return "sum"
	case ReduceAvg:
		return "avg"
	case ReduceMin:
		return "min"
	case ReduceMax:
		return "max"
	default:
		return fmt.Sprintf("ReducerFn(%d)", int(r))
	}
}

// ParseReducerFn resolves a reducer by its wire-format name.
func ParseReducerFn(s string) (ReducerFn, bool) {
	switch s {
	case "sum":
		return ReduceSum, true
	case "avg":
		return ReduceAvg, true
	case "min":
		return ReduceMin, true
	case "max":
		return ReduceMax, true
	default:
		return 0, false
	}
}

// CombineMode is a bus's combine semantics.
type CombineMode int

const (
	CombineLast CombineMode = iota
	CombineFirst
	CombineSum
	CombineAverage
	CombineMin
	CombineMax
	CombineOr
	CombineAnd
	CombineCustom
)

func (m CombineMode) String() string {
	switch m {
	case CombineLast:
		return "last"
	case CombineFirst:
		return "first"
	case CombineSum:
		return "sum"
	case CombineAverage:
		return "average"
	case CombineMin:
		return "min"
	case CombineMax:
		return "max"
	case CombineOr:
		return "or"
	case CombineAnd:
		return "and"
	case CombineCustom:
		return "custom"
	default:
		return fmt.Sprintf("CombineMode(%d)", int(m))
	}
}

// Commutative reports whether the result does not depend on writer order.
// last/first/layer-like modes are order dependent; everything else is not.
func (m CombineMode) Commutative() bool {
	switch m {
	case CombineSum, CombineAverage, CombineMin, CombineMax, CombineOr, CombineAnd:
		return true
	default:
		return false
	}
}

// ValidForType reports whether the combine mode is legal for the given
// bus element type, surfaced as InvalidCombineModeForType on mismatch.
func (m CombineMode) ValidForType(t TypeDesc) bool {
	switch m {
	case CombineOr, CombineAnd:
		return t.Domain == DomainBoolean
	case CombineSum, CombineAverage, CombineMin, CombineMax:
		switch t.Domain {
		case DomainFloat, DomainVec2, DomainVec3, DomainVec4, DomainColor, DomainDuration, DomainTimeMs, DomainPhase:
			return true
		default:
			return false
		}
	case CombineLast, CombineFirst, CombineCustom:
		return true
	default:
		return false
	}
}
