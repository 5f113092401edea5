package runtime

import "github.com/sarchlab/patchflow/ir"

// TimeState tracks the previous frame's derived time, the only history the
// TimeDerive step needs for wrap/end-event detection (spec.md §4.9, §4.11).
type TimeState struct {
	havePrev       bool
	prevTModelMs   float64
	prevProgress01 float64
}

// NewTimeState starts with no prior frame recorded — the first frame never
// reports a wrap or end event.
func NewTimeState() *TimeState { return &TimeState{} }

// derived is the result of resolving one frame's time against a TimeModel.
type derived struct {
	tModelMs   float64
	progress01 float64
	endEvent   bool
}

// resolve computes this frame's derived time and advances TimeState for the
// next call (spec.md §4.11):
//   - Finite{durationMs}: tModelMs = clamp(tAbsMs, 0, durationMs);
//     progress01 = tModelMs/durationMs; endEvent = progress01==1 && prevProgress01<1.
//   - Infinite: tModelMs = tAbsMs, no phase/wrap at this level.
func (ts *TimeState) resolve(model ir.TimeModel, tAbsMs float64) derived {
	var d derived
	switch model.Kind {
	case ir.TimeFinite:
		d.tModelMs = clamp(tAbsMs, 0, model.DurationMs)
		if model.DurationMs > 0 {
			d.progress01 = d.tModelMs / model.DurationMs
		} else {
			d.progress01 = 1
		}
		d.endEvent = d.progress01 == 1 && ts.havePrev && ts.prevProgress01 < 1
	case ir.TimeInfinite:
		d.tModelMs = tAbsMs
		d.progress01 = 0
	}
	ts.havePrev = true
	ts.prevTModelMs = d.tModelMs
	ts.prevProgress01 = d.progress01
	return d
}
