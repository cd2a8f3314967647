package canvas

import (
	"bytes"
	"image"
	"image/color"
)

// Default surface dimensions, matching the 800x600 drawing board the
// web client renders.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Point is a position in surface coordinate space, independent of any
// display scaling applied by a client.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one stroke increment between two points. A nil Prev marks
// a single-point dab at the start of a gesture.
type Segment struct {
	Prev  *Point  `json:"prevPoint"`
	Curr  Point   `json:"currentPoint"`
	Color string  `json:"color"`
	Width float64 `json:"lineWidth"`
}

// Surface is a 2D pixel buffer one layer draws onto. Untouched pixels
// stay fully transparent so a bootstrap snapshot can be composited
// underneath later strokes.
type Surface struct {
	img *image.RGBA
}

// NewSurface returns a blank surface of the given size.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// NewDefaultSurface returns a blank surface with the default dimensions.
func NewDefaultSurface() *Surface {
	return NewSurface(DefaultWidth, DefaultHeight)
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.img.Rect.Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Clear resets every pixel to transparent.
func (s *Surface) Clear() {
	for i := range s.img.Pix {
		s.img.Pix[i] = 0
	}
}

// Blank reports whether no pixel has been drawn.
func (s *Surface) Blank() bool {
	for i := 3; i < len(s.img.Pix); i += 4 {
		if s.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the surface.
func (s *Surface) Clone() *Surface {
	cp := image.NewRGBA(s.img.Rect)
	copy(cp.Pix, s.img.Pix)
	return &Surface{img: cp}
}

// Equal reports whether two surfaces hold identical pixel content.
func (s *Surface) Equal(other *Surface) bool {
	if other == nil || s.img.Rect != other.img.Rect {
		return false
	}
	return bytes.Equal(s.img.Pix, other.img.Pix)
}

// At returns the color of the pixel at (x, y).
func (s *Surface) At(x, y int) color.RGBA {
	return s.img.RGBAAt(x, y)
}

func (s *Surface) set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= s.img.Rect.Dx() || y >= s.img.Rect.Dy() {
		return
	}
	s.img.SetRGBA(x, y, c)
}
