package canvas

import (
	"image/color"
	"math"
)

// DrawSegment renders one stroke increment with round caps. Lines are
// drawn by stamping discs of radius width/2 along the segment, so a
// nil Prev degenerates to a single dab and replaying the same segment
// is idempotent.
func (s *Surface) DrawSegment(seg Segment) {
	c := ParseColor(seg.Color)
	radius := seg.Width / 2
	if radius <= 0 {
		radius = 0.5
	}

	if seg.Prev == nil {
		s.stampDisc(seg.Curr, radius, c)
		return
	}

	dx := seg.Curr.X - seg.Prev.X
	dy := seg.Curr.Y - seg.Prev.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		s.stampDisc(seg.Curr, radius, c)
		return
	}

	// Stamp at half-pixel spacing so no gaps appear at any angle.
	steps := int(dist*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.stampDisc(Point{X: seg.Prev.X + dx*t, Y: seg.Prev.Y + dy*t}, radius, c)
	}
}

func (s *Surface) stampDisc(p Point, radius float64, c color.RGBA) {
	minX := int(math.Floor(p.X - radius))
	maxX := int(math.Ceil(p.X + radius))
	minY := int(math.Floor(p.Y - radius))
	maxY := int(math.Ceil(p.Y + radius))

	rr := radius * radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			ddx := float64(x) + 0.5 - p.X
			ddy := float64(y) + 0.5 - p.Y
			if ddx*ddx+ddy*ddy <= rr {
				s.set(x, y, c)
			}
		}
	}
}

// ParseColor decodes a #rrggbb hex string. Malformed values fall back
// to opaque black rather than failing the stroke.
func ParseColor(hex string) color.RGBA {
	black := color.RGBA{A: 0xff}
	if len(hex) != 7 || hex[0] != '#' {
		return black
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(hex[1+i*2])
		lo, ok2 := hexDigit(hex[2+i*2])
		if !ok1 || !ok2 {
			return black
		}
		v[i] = hi<<4 | lo
	}
	return color.RGBA{R: v[0], G: v[1], B: v[2], A: 0xff}
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
