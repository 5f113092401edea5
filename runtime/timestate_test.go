package runtime

import (
	"testing"

	"github.com/sarchlab/patchflow/ir"
)

func TestResolveFiniteClampsAndReportsEndEventOnce(t *testing.T) {
	ts := NewTimeState()
	model := ir.TimeModel{Kind: ir.TimeFinite, DurationMs: 1000}

	mid := ts.resolve(model, 500)
	if mid.tModelMs != 500 || mid.progress01 != 0.5 || mid.endEvent {
		t.Fatalf("mid-playback derived = %+v", mid)
	}

	atEnd := ts.resolve(model, 1000)
	if atEnd.progress01 != 1 || !atEnd.endEvent {
		t.Fatalf("at-end derived = %+v, want progress01=1 endEvent=true", atEnd)
	}

	// endEvent only fires on the transition into progress01==1, not every
	// subsequent frame that stays there.
	stillAtEnd := ts.resolve(model, 1500)
	if stillAtEnd.tModelMs != 1000 {
		t.Fatalf("expected tModelMs clamped to duration, got %v", stillAtEnd.tModelMs)
	}
	if stillAtEnd.endEvent {
		t.Fatalf("expected endEvent to fire only on the transition frame")
	}
}

func TestResolveInfiniteNeverClampsOrEnds(t *testing.T) {
	ts := NewTimeState()
	model := ir.TimeModel{Kind: ir.TimeInfinite}

	d := ts.resolve(model, 123456)
	if d.tModelMs != 123456 {
		t.Fatalf("tModelMs = %v, want 123456 (unclamped)", d.tModelMs)
	}
	if d.endEvent {
		t.Fatalf("infinite time model must never report an end event")
	}
}
