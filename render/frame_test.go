package render

import "testing"

func TestEncodeColorRGBA8PremultipliesAlpha(t *testing.T) {
	got := EncodeColorRGBA8(1, 0, 0, 0.5)
	want := [4]byte{128, 0, 0, 128}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEncodeColorRGBA8ClampsOutOfRangeInputs(t *testing.T) {
	got := EncodeColorRGBA8(2, -1, 0.5, 1.5)
	want := [4]byte{255, 0, 128, 255}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEncodeColorRGBA8OpaqueWhite(t *testing.T) {
	got := EncodeColorRGBA8(1, 1, 1, 1)
	want := [4]byte{255, 255, 255, 255}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEncodeColorRGBA8ZeroAlphaZeroesRGB(t *testing.T) {
	got := EncodeColorRGBA8(1, 1, 1, 0)
	want := [4]byte{0, 0, 0, 0}
	if got != want {
		t.Fatalf("got %v, want %v (premultiplication zeroes RGB at alpha=0)", got, want)
	}
}
