package ir

// TimeModelKind distinguishes the two TimeRoot variants (spec.md §3.2,
// §4.4). Ping-pong playback is deliberately NOT a third variant here — see
// DESIGN.md's Open Question decision; it is built entirely from composite
// PhaseClock block lowerings on top of Infinite/Finite time.
type TimeModelKind int

const (
	TimeFinite TimeModelKind = iota
	TimeInfinite
)

// TimeModel is the declared time topology of a patch, extracted from the
// single TimeRoot block by pass 3.
type TimeModel struct {
	Kind TimeModelKind

	// TimeFinite
	DurationMs float64

	// TimeInfinite — a compilation hint only (Open Question decision):
	// it never changes tModelMs, which always equals tAbsMs for Infinite.
	WindowMs float64
}

// CanonicalSlots names the fixed, well-known time slots TimeDerive writes,
// so later passes can reference time without re-deriving it. A field holds
// NoSlot when pass 8 allocated no slot for it; pass 8 never allocates
// EndEvent.
type CanonicalSlots struct {
	TAbsMs     ValueSlot
	TModelMs   ValueSlot
	Progress01 ValueSlot // only meaningful for TimeFinite
	EndEvent   ValueSlot // only meaningful for TimeFinite
}
