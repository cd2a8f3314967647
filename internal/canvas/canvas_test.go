package canvas

import (
	"image/color"
	"testing"
)

func TestDabRendersDisc(t *testing.T) {
	s := NewDefaultSurface()
	s.DrawSegment(Segment{Curr: Point{X: 10, Y: 10}, Color: "#000000", Width: 5})

	black := color.RGBA{A: 0xff}
	if got := s.At(10, 10); got != black {
		t.Fatalf("center pixel = %v, want opaque black", got)
	}
	// Radius is 2.5, so (12, 10) is inside and (14, 10) is well outside.
	if got := s.At(12, 10); got != black {
		t.Fatalf("pixel inside dab radius = %v, want opaque black", got)
	}
	if got := s.At(14, 10); got.A != 0 {
		t.Fatalf("pixel outside dab radius = %v, want transparent", got)
	}
}

func TestDrawSegmentConnectsPoints(t *testing.T) {
	s := NewDefaultSurface()
	prev := Point{X: 10, Y: 10}
	s.DrawSegment(Segment{Prev: &prev, Curr: Point{X: 50, Y: 10}, Color: "#ff0000", Width: 4})

	red := color.RGBA{R: 0xff, A: 0xff}
	for x := 10; x <= 50; x += 5 {
		if got := s.At(x, 10); got != red {
			t.Fatalf("pixel (%d,10) = %v, want red along the line", x, got)
		}
	}
	if got := s.At(30, 20); got.A != 0 {
		t.Fatalf("pixel far from line = %v, want transparent", got)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	segs := []Segment{
		{Curr: Point{X: 5, Y: 5}, Color: "#000000", Width: 5},
		{Prev: &Point{X: 5, Y: 5}, Curr: Point{X: 40, Y: 30}, Color: "#00ff00", Width: 3},
		{Prev: &Point{X: 40, Y: 30}, Curr: Point{X: 12, Y: 55}, Color: "#0000ff", Width: 7},
	}

	first := NewDefaultSurface()
	for _, seg := range segs {
		first.DrawSegment(seg)
	}
	second := NewDefaultSurface()
	for _, seg := range segs {
		second.DrawSegment(seg)
	}

	if !first.Equal(second) {
		t.Fatal("applying the same segments in the same order produced different rasters")
	}
}

func TestClearBlanksNonEmptySurface(t *testing.T) {
	s := NewDefaultSurface()
	s.DrawSegment(Segment{Curr: Point{X: 100, Y: 100}, Color: "#123456", Width: 20})
	if s.Blank() {
		t.Fatal("surface should not be blank after drawing")
	}

	s.Clear()
	if !s.Blank() {
		t.Fatal("surface should be blank after clear")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewDefaultSurface()
	s.DrawSegment(Segment{Curr: Point{X: 33, Y: 44}, Color: "#ab12cd", Width: 9})

	encoded, err := s.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !s.Equal(decoded) {
		t.Fatal("decoded snapshot does not match the original surface")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode("not-a-data-url"); err == nil {
		t.Fatal("expected error for non data url input")
	}
	if _, err := Decode(dataURLPrefix + "!!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestDrawUnderKeepsLocalStrokes(t *testing.T) {
	base := NewDefaultSurface()
	base.DrawSegment(Segment{Curr: Point{X: 20, Y: 20}, Color: "#0000ff", Width: 40})

	s := NewDefaultSurface()
	s.DrawSegment(Segment{Curr: Point{X: 20, Y: 20}, Color: "#ff0000", Width: 4})
	s.DrawUnder(base)

	// The locally drawn red pixel wins over the blue base.
	if got := s.At(20, 20); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Fatalf("local stroke pixel = %v, want red", got)
	}
	// Untouched pixels take the base image.
	if got := s.At(35, 20); got != (color.RGBA{B: 0xff, A: 0xff}) {
		t.Fatalf("base pixel = %v, want blue", got)
	}
}

func TestParseColorFallsBackToBlack(t *testing.T) {
	black := color.RGBA{A: 0xff}
	for _, bad := range []string{"", "red", "#12345", "#gggggg"} {
		if got := ParseColor(bad); got != black {
			t.Fatalf("ParseColor(%q) = %v, want black", bad, got)
		}
	}
	if got := ParseColor("#1A2b3C"); got != (color.RGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}) {
		t.Fatalf("ParseColor mixed case = %v", got)
	}
}
