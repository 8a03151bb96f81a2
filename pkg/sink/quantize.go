package sink

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/samber/lo"
	"github.com/soniakeys/quant/median"

	"chunkgif/pkg/bitmap"
)

const maxColors = 256

// sampleOf returns the pixels the palette is built from. Speed 1 uses every
// pixel; speed s keeps roughly one pixel in s, picked on a regular grid.
func sampleOf(img *bitmap.RGB, speed int) *image.NRGBA {
	src := bitmap.ToNRGBA(img)
	if speed <= 1 {
		return src
	}
	scale := 1 / math.Sqrt(float64(speed))
	w := int(math.Max(1, math.Round(float64(img.Width())*scale)))
	h := int(math.Max(1, math.Round(float64(img.Height())*scale)))
	// nearest neighbour never invents colors that are not in the frame
	return imaging.Resize(src, w, h, imaging.NearestNeighbor)
}

// histogram returns the distinct colors of an opaque NRGBA image.
func histogram(img *image.NRGBA) []bitmap.Pixel {
	seen := make(map[bitmap.Pixel]struct{})
	for i := 0; i+3 < len(img.Pix); i += 4 {
		seen[bitmap.Pixel{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}] = struct{}{}
	}
	out := lo.Keys(seen)
	// map order is random; keep palettes stable from run to run
	sort.Slice(out, func(i, j int) bool {
		return pack(out[i]) < pack(out[j])
	})
	return out
}

func pack(p bitmap.Pixel) uint32 {
	return uint32(p.R)<<16 | uint32(p.G)<<8 | uint32(p.B)
}

// buildPalette returns the exact colors when there are at most 256 of them and
// a median cut reduction otherwise.
func buildPalette(img *bitmap.RGB, speed int) color.Palette {
	sample := sampleOf(img, speed)
	hist := histogram(sample)

	if len(hist) <= maxColors {
		pal := make(color.Palette, len(hist))
		for i, s := range hist {
			pal[i] = s
		}
		return pal
	}

	return median.Quantizer(maxColors).Quantize(make(color.Palette, 0, maxColors), sample)
}

// quantize maps img onto pal.
func quantize(img *bitmap.RGB, pal color.Palette, dither bool) *image.Paletted {
	dst := image.NewPaletted(img.Bounds(), pal)
	if dither {
		draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, image.Point{})
		return dst
	}

	cache := make(map[bitmap.Pixel]uint8)
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			px := img.Pixel(x, y)
			idx, ok := cache[px]
			if !ok {
				idx = uint8(pal.Index(px))
				cache[px] = idx
			}
			dst.Pix[y*dst.Stride+x] = idx
		}
	}
	return dst
}
