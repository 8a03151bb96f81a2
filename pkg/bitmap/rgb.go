package bitmap

import (
	"bytes"
	"image"
	"image/color"
)

const bytesPerPixel = 3

// New allocates a zeroed (black) buffer of w*h pixels.
func New(w, h int) *RGB {
	return &RGB{
		pixels: make([]byte, w*h*bytesPerPixel),
		stride: w * bytesPerPixel,
		bounds: image.Rect(0, 0, w, h),
	}
}

// RGB is a packed 24-bit raster, row-major, three bytes (R, G, B) per pixel and
// no row padding. It implements the draw.Image interface so it can be handed to
// encoders and the image/draw helpers directly.
//
// The bounds always start at 0,0 and never change after construction.
type RGB struct {
	pixels []byte
	stride int
	bounds image.Rectangle
}

func (d *RGB) Width() int {
	return d.bounds.Dx()
}

func (d *RGB) Height() int {
	return d.bounds.Dy()
}

// Bytes exposes the backing store. Callers must not retain it across mutations.
func (d *RGB) Bytes() []byte {
	return d.pixels
}

// Clone returns a deep copy of the buffer.
func (d *RGB) Clone() *RGB {
	c := *d
	c.pixels = make([]byte, len(d.pixels))
	copy(c.pixels, d.pixels)
	return &c
}

// Equal reports whether both buffers have the same size and pixels.
func (d *RGB) Equal(o *RGB) bool {
	return d.bounds == o.bounds && bytes.Equal(d.pixels, o.pixels)
}

// Pixel returns the pixel at x,y. The coordinates are not checked beyond what
// slice indexing does: callers validate them up front (see Span.Within).
func (d *RGB) Pixel(x, y int) Pixel {
	i := y*d.stride + bytesPerPixel*x
	return Pixel{R: d.pixels[i], G: d.pixels[i+1], B: d.pixels[i+2]}
}

// SetPixel writes px at x,y under the same contract as Pixel.
func (d *RGB) SetPixel(x, y int, px Pixel) {
	i := y*d.stride + bytesPerPixel*x
	d.pixels[i] = px.R
	d.pixels[i+1] = px.G
	d.pixels[i+2] = px.B
}

// Bounds implements the image.Image (and draw.Image) interface.
func (d *RGB) Bounds() image.Rectangle {
	return d.bounds
}

// ColorModel implements the image.Image (and draw.Image) interface.
func (d *RGB) ColorModel() color.Model {
	return rgbModel
}

// At implements the image.Image (and draw.Image) interface.
func (d *RGB) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(d.bounds)) {
		return Pixel{}
	}
	return d.Pixel(x, y)
}

// Set implements the draw.Image interface. Out of bounds writes are dropped.
func (d *RGB) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(d.bounds)) {
		return
	}
	d.SetPixel(x, y, rgbModel.Convert(c).(Pixel))
}

// Pixel is an opaque 8-bit-per-channel color. It implements color.Color.
type Pixel struct {
	R, G, B uint8
}

// RGBA implements the color.Color interface. Alpha is always fully opaque.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	r = uint32(p.R)
	r |= r << 8
	g = uint32(p.G)
	g |= g << 8
	b = uint32(p.B)
	b |= b << 8
	a = 0xFFFF
	return
}

var rgbModel = color.ModelFunc(func(c color.Color) color.Color {
	if px, ok := c.(Pixel); ok {
		return px
	}
	// Straight channels, alpha dropped. Nothing is composited.
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{R: n.R, G: n.G, B: n.B}
})
