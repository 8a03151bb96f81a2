package bitmap

import (
	"image"
)

// FromImage converts src into a packed RGB buffer anchored at 0,0.
//
// Alpha is dropped without compositing: every pixel keeps its straight
// (non-premultiplied) color, whatever the concrete type of src. A fully
// transparent pixel of a premultiplied image has no color left and becomes
// black.
func FromImage(src image.Image) *RGB {
	b := src.Bounds()
	dst := New(b.Dx(), b.Dy())

	switch s := src.(type) {
	case *RGB:
		return s.Clone()
	case *image.NRGBA:
		copyRGBA(dst, s.Pix, s.Stride, b.Dx(), b.Dy())
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x-b.Min.X, y-b.Min.Y, src.At(x, y))
		}
	}

	return dst
}

// copyRGBA drops the fourth byte of every pixel of a straight 4-byte-per-pixel
// image. pix must start at the image's top-left pixel.
func copyRGBA(dst *RGB, pix []byte, stride, w, h int) {
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+4*w]
		out := dst.pixels[y*dst.stride : (y+1)*dst.stride]
		for x := 0; x < w; x++ {
			out[3*x] = row[4*x]
			out[3*x+1] = row[4*x+1]
			out[3*x+2] = row[4*x+2]
		}
	}
}

// ToNRGBA expands the buffer into an opaque *image.NRGBA.
func ToNRGBA(src *RGB) *image.NRGBA {
	w, h := src.Width(), src.Height()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i < len(src.pixels); i, j = i+3, j+4 {
		dst.Pix[j] = src.pixels[i]
		dst.Pix[j+1] = src.pixels[i+1]
		dst.Pix[j+2] = src.pixels[i+2]
		dst.Pix[j+3] = 0xFF
	}
	return dst
}
