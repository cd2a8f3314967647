package client

import "github.com/anant1857/canvaschat/internal/canvas"

// StrokeCapture turns pointer motion into an ordered sequence of
// segments for the duration of one press-drag-release gesture. Input
// coordinates are in display space; samples are scaled into surface
// space so strokes land identically on every participant's raster.
type StrokeCapture struct {
	active bool
	prev   *canvas.Point
	start  *canvas.Point

	scaleX float64
	scaleY float64
}

// NewStrokeCapture returns a capture with 1:1 display scaling.
func NewStrokeCapture() *StrokeCapture {
	return &StrokeCapture{scaleX: 1, scaleY: 1}
}

// SetViewport records the display size the surface is rendered at, so
// samples can be mapped back into surface coordinates.
func (sc *StrokeCapture) SetViewport(displayW, displayH float64, surfaceW, surfaceH int) {
	if displayW <= 0 || displayH <= 0 {
		return
	}
	sc.scaleX = float64(surfaceW) / displayW
	sc.scaleY = float64(surfaceH) / displayH
}

// Begin starts a gesture on pointer press. The first sample after
// Begin produces a dab (nil previous point).
func (sc *StrokeCapture) Begin() {
	sc.active = true
	sc.prev = nil
	sc.start = nil
}

// Sample converts one motion sample into a segment using the previous
// captured point, or a dab when it is the first sample of the gesture.
// It returns false when no gesture is active.
func (sc *StrokeCapture) Sample(x, y float64, color string, width float64) (canvas.Segment, bool) {
	if !sc.active {
		return canvas.Segment{}, false
	}

	curr := canvas.Point{X: x * sc.scaleX, Y: y * sc.scaleY}
	seg := canvas.Segment{
		Prev:  sc.prev,
		Curr:  curr,
		Color: color,
		Width: width,
	}
	if sc.start == nil {
		start := curr
		sc.start = &start
	}
	sc.prev = &canvas.Point{X: curr.X, Y: curr.Y}
	return seg, true
}

// End finishes the gesture on release or pointer leave. It returns the
// gesture's start point, for anchoring a presence label, and whether
// the gesture produced any samples.
func (sc *StrokeCapture) End() (canvas.Point, bool) {
	start := sc.start
	sc.active = false
	sc.prev = nil
	sc.start = nil
	if start == nil {
		return canvas.Point{}, false
	}
	return *start, true
}
