package ir

import (
	"testing"

	"github.com/sarchlab/patchflow/typesys"
)

func TestConstPoolInternsEqualValuesOnce(t *testing.T) {
	p := NewConstPool()

	id1 := p.Intern(typesys.Scalar(typesys.DomainFloat), 1.5)
	id2 := p.Intern(typesys.Scalar(typesys.DomainFloat), 1.5)
	if id1 != id2 {
		t.Fatalf("expected equal (type, value) pairs to intern to the same id, got %d and %d", id1, id2)
	}
	if p.Len() != 1 {
		t.Fatalf("expected one interned constant, got %d", p.Len())
	}

	id3 := p.Intern(typesys.Scalar(typesys.DomainFloat), 2.0)
	if id3 == id1 {
		t.Fatalf("expected a distinct value to get a distinct id")
	}
	if p.Len() != 2 {
		t.Fatalf("expected two interned constants, got %d", p.Len())
	}
}

func TestConstPoolDistinguishesDomainForSameRawValue(t *testing.T) {
	p := NewConstPool()

	vec4ID := p.Intern(typesys.Scalar(typesys.DomainVec4), [4]float64{1, 0, 0, 1})
	colorID := p.Intern(typesys.Scalar(typesys.DomainColor), [4]float64{1, 0, 0, 1})

	if vec4ID == colorID {
		t.Fatalf("expected vec4 and color constants with the same raw array to intern separately")
	}
}

func TestConstPoolGobRoundTrip(t *testing.T) {
	p := NewConstPool()
	p.Intern(typesys.Scalar(typesys.DomainFloat), 3.0)
	p.Intern(typesys.Scalar(typesys.DomainVec2), [2]float64{1, 2})

	data, err := p.GobEncode()
	if err != nil {
		t.Fatalf("GobEncode: %v", err)
	}

	out := NewConstPool()
	if err := out.GobDecode(data); err != nil {
		t.Fatalf("GobDecode: %v", err)
	}
	if out.Len() != p.Len() {
		t.Fatalf("got %d consts after round-trip, want %d", out.Len(), p.Len())
	}

	// The rebuilt index must still dedupe on re-intern.
	id := out.Intern(typesys.Scalar(typesys.DomainFloat), 3.0)
	if id != 0 {
		t.Fatalf("expected re-interning an already-present constant to reuse id 0, got %d", id)
	}
}
