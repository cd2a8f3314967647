package canvas

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
)

// Snapshots travel as PNG data URLs, the same format the browser's
// canvas.toDataURL() produces.
const dataURLPrefix = "data:image/png;base64,"

// Encode serializes the surface as a PNG data URL.
func (s *Surface) Encode() (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a PNG data URL into a new surface.
func Decode(dataURL string) (*Surface, error) {
	raw, ok := strings.CutPrefix(dataURL, dataURLPrefix)
	if !ok {
		return nil, fmt.Errorf("decode snapshot: not a png data url")
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot base64: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot png: %w", err)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(rgba, rgba.Rect, img, img.Bounds().Min, draw.Src)
	return &Surface{img: rgba}, nil
}

// DrawUnder composites base beneath the surface's existing content:
// pixels already drawn locally win, untouched pixels take the base
// image. Live strokes applied while waiting for a snapshot must not
// be painted over.
func (s *Surface) DrawUnder(base *Surface) {
	if base == nil {
		return
	}
	w, h := s.Width(), s.Height()
	if base.Width() < w {
		w = base.Width()
	}
	if base.Height() < h {
		h = base.Height()
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if s.img.RGBAAt(x, y).A == 0 {
				s.img.SetRGBA(x, y, base.img.RGBAAt(x, y))
			}
		}
	}
}
