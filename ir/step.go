package ir

// BufferFormat names the physical encoding a FieldMaterialize step fills.
type BufferFormat string

const (
	FormatF32    BufferFormat = "f32"
	FormatVec2F  BufferFormat = "vec2f32"
	FormatVec3F  BufferFormat = "vec3f32"
	FormatVec4F  BufferFormat = "vec4f32"
	// FormatRGBA8 is the canonical linear_premul_rgba8 color encoding
	// (spec.md §4.12): the only render color encoding this spec defines.
	FormatRGBA8 BufferFormat = "linear_premul_rgba8"
)

// SinkKind names a render sink type (spec.md §6).
type SinkKind string

const (
	SinkInstances2D SinkKind = "instances2d"
	SinkPaths       SinkKind = "paths"
	SinkLayer       SinkKind = "layer"
)

// BufferPlanEntry names one buffer a RenderAssemble step needs, and the
// format the consumer wants it materialized in.
type BufferPlanEntry struct {
	Name     string
	FieldID  int
	DomainID int
	Format   BufferFormat
}

// UniformPlanEntry names one scalar/vector uniform a render pass needs,
// sourced from a signal slot.
type UniformPlanEntry struct {
	Name string
	Slot ValueSlot
}

// RenderPlan is the materialization plan for one render sink.
type RenderPlan struct {
	Sink          SinkKind
	InstanceCount int // resolved domain cardinality, or -1 if dynamic via slot
	CountSlot     ValueSlot
	Buffers       []BufferPlanEntry
	Uniforms      []UniformPlanEntry
}

// StepKind discriminates schedule entries (spec.md §3.3, §4.8).
type StepKind int

const (
	StepTimeDerive StepKind = iota
	StepSigEval
	StepFieldMaterialize
	StepBusCombine
	StepRenderAssemble
	StepDebugProbe
)

// Phase partitions the schedule the way pass 8 emits it.
type Phase int

const (
	PhaseTime Phase = iota
	PhaseSignals
	PhaseBuses
	PhaseFields
	PhaseRender
	PhaseDebug
)

func (p Phase) String() string {
	switch p {
	case PhaseTime:
		return "Time"
	case PhaseSignals:
		return "Signals"
	case PhaseBuses:
		return "Buses"
	case PhaseFields:
		return "Fields"
	case PhaseRender:
		return "Render"
	case PhaseDebug:
		return "Debug"
	default:
		return "Phase(?)"
	}
}

// BusWriter is one pre-sorted publisher contributing to a BusCombine step.
type BusWriter struct {
	SortKey int
	EdgeID  string
	Slot    ValueSlot
}

// Step is one schedule entry. Only the fields relevant to Kind are used.
type Step struct {
	Kind  StepKind
	Phase Phase

	// StepTimeDerive
	TimeModel TimeModel
	Slots     CanonicalSlots

	// StepSigEval
	SigExprID int
	OutSlot   ValueSlot

	// StepFieldMaterialize
	FieldExprID int
	DomainID    int
	Format      BufferFormat
	BufferTag   string

	// StepBusCombine
	BusID       string
	Mode        int // typesys.CombineMode
	Writers     []BusWriter
	DefaultSlot ValueSlot
	BusOutSlot  ValueSlot

	// StepRenderAssemble
	SinkName string
	Plan     RenderPlan

	// StepDebugProbe
	ProbeID  string
	SrcSlot  ValueSlot
}

// Schedule is the full ordered, phase-partitioned program the executor runs
// every frame.
type Schedule struct {
	Steps []Step
}

// ByPhase returns the steps in the given phase, in emitted order.
func (s *Schedule) ByPhase(p Phase) []Step {
	var out []Step
	for _, st := range s.Steps {
		if st.Phase == p {
			out = append(out, st)
		}
	}
	return out
}
