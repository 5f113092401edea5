package typesys

import (
	"fmt"
	"strings"
)

var worldNames = map[string]World{
	"scalar": WorldScalar,
	"signal": WorldSignal,
	"field":  WorldField,
	"event":  WorldEvent,
}

var domainNames = map[string]Domain{
	"float":      DomainFloat,
	"vec2":       DomainVec2,
	"vec3":       DomainVec3,
	"vec4":       DomainVec4,
	"color":      DomainColor,
	"phase":      DomainPhase,
	"boolean":    DomainBoolean,
	"duration":   DomainDuration,
	"timeMs":     DomainTimeMs,
	"domain":     DomainDomain,
	"renderTree": DomainRenderTree,
	"path":       DomainPath,
}

// ParseTypeDesc parses the wire-format "<world>:<domain>" (e.g.
// "signal:float") used by patchgraph.Bus.Type.
func ParseTypeDesc(s string) (TypeDesc, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TypeDesc{}, fmt.Errorf("typesys: malformed type descriptor %q", s)
	}
	w, ok := worldNames[parts[0]]
	if !ok {
		return TypeDesc{}, fmt.Errorf("typesys: unknown world %q", parts[0])
	}
	d, ok := domainNames[parts[1]]
	if !ok {
		return TypeDesc{}, fmt.Errorf("typesys: unknown domain %q", parts[1])
	}
	return TypeDesc{World: w, Domain: d}, nil
}

// ParseCombineMode parses a bus's wire-format combine mode, including the
// "custom:<id>" form.
func ParseCombineMode(s string) (CombineMode, string, error) {
	if strings.HasPrefix(s, "custom:") {
		return CombineCustom, strings.TrimPrefix(s, "custom:"), nil
	}
	switch s {
	case "last":
		return CombineLast, "", nil
	case "first":
		return CombineFirst, "", nil
	case "sum":
		return CombineSum, "", nil
	case "average":
		return CombineAverage, "", nil
	case "min":
		return CombineMin, "", nil
	case "max":
		return CombineMax, "", nil
	case "or":
		return CombineOr, "", nil
	case "and":
		return CombineAnd, "", nil
	default:
		return 0, "", fmt.Errorf("typesys: unknown combine mode %q", s)
	}
}
