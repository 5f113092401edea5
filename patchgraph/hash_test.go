package patchgraph

import "testing"

func TestCanonicalHashStableForEqualPatches(t *testing.T) {
	p1 := &Patch{
		Blocks: []Block{{ID: "b1", Type: "Oscillator"}},
		Settings: Settings{Seed: 42},
	}
	p2 := &Patch{
		Blocks: []Block{{ID: "b1", Type: "Oscillator"}},
		Settings: Settings{Seed: 42},
	}

	h1, err := p1.CanonicalHash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := p2.CanonicalHash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("expected equal patches to hash identically: %q vs %q", h1, h2)
	}
}

func TestCanonicalHashDiffersOnContentChange(t *testing.T) {
	p1 := &Patch{Blocks: []Block{{ID: "b1", Type: "Oscillator"}}}
	p2 := &Patch{Blocks: []Block{{ID: "b1", Type: "Noise"}}}

	h1, _ := p1.CanonicalHash()
	h2, _ := p2.CanonicalHash()
	if h1 == h2 {
		t.Fatalf("expected differing block types to hash differently")
	}
}

func TestEndpointYAMLRoundTrip(t *testing.T) {
	p := &Patch{
		Edges: []Edge{
			{ID: "e1", From: PortEndpoint("b1", "out"), To: BusEndpoint("busA"), Enabled: true},
		},
	}

	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(out.Edges))
	}
	edge := out.Edges[0]
	if edge.From.Kind != EndpointPort || edge.From.BlockID != "b1" || edge.From.SlotID != "out" {
		t.Fatalf("From endpoint round-tripped wrong: %+v", edge.From)
	}
	if edge.To.Kind != EndpointBus || edge.To.BusID != "busA" {
		t.Fatalf("To endpoint round-tripped wrong: %+v", edge.To)
	}
}
