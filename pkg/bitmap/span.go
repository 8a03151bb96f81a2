package bitmap

import (
	"fmt"
	"image"
)

// Range is a half-open interval [Start, End) of pixel coordinates.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Span is a rectangular chunk made of independent horizontal and vertical ranges.
type Span struct {
	X Range
	Y Range
}

func NewSpan(x0, x1, y0, y1 int) Span {
	return Span{X: Range{x0, x1}, Y: Range{y0, y1}}
}

func (s Span) Width() int {
	return s.X.Len()
}

func (s Span) Height() int {
	return s.Y.Len()
}

func (s Span) Min() image.Point {
	return image.Pt(s.X.Start, s.Y.Start)
}

func (s Span) Rect() image.Rectangle {
	return image.Rect(s.X.Start, s.Y.Start, s.X.End, s.Y.End)
}

// At returns the span translated so that its top-left corner is p.
func (s Span) At(p image.Point) Span {
	return NewSpan(p.X, p.X+s.Width(), p.Y, p.Y+s.Height())
}

// Within reports whether the span is non-empty and lies inside r.
func (s Span) Within(r image.Rectangle) bool {
	return s.X.Start < s.X.End && s.Y.Start < s.Y.End &&
		s.Rect().In(r)
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)x[%d,%d)", s.X.Start, s.X.End, s.Y.Start, s.Y.End)
}

// CopyChunk copies the pixels of span in src into dst, with the top-left corner
// of the chunk landing on to. Both the span and the translated span must lie
// inside the buffers; nothing is checked per pixel.
//
// The copy walks rows top to bottom and pixels left to right, reading then
// writing one pixel at a time. When dst and src are the same buffer and the two
// areas overlap, already written pixels are read again further down the walk.
func CopyChunk(dst, src *RGB, span Span, to image.Point) {
	for i, y := 0, span.Y.Start; y < span.Y.End; i, y = i+1, y+1 {
		for j, x := 0, span.X.Start; x < span.X.End; j, x = j+1, x+1 {
			dst.SetPixel(to.X+j, to.Y+i, src.Pixel(x, y))
		}
	}
}
