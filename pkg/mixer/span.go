package mixer

import (
	"image"

	"github.com/pkg/errors"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/fault"
)

// RandomSpan picks a chunk of at least minW x minH pixels inside a w x h image.
// Each axis draws its start from [0, size-min) and then its end from
// [start+min, size), so a chunk never reaches the last row or column.
func RandomSpan(r Rand, w, h, minW, minH int) (bitmap.Span, error) {
	if err := checkChunk(w, h, minW, minH); err != nil {
		return bitmap.Span{}, err
	}

	x0 := between(r, 0, w-minW)
	x1 := between(r, x0+minW, w)

	y0 := between(r, 0, h-minH)
	y1 := between(r, y0+minH, h)

	return bitmap.NewSpan(x0, x1, y0, y1), nil
}

// RandomTranspose picks a new top-left corner for span such that the moved
// chunk still fits inside a w x h image. An axis where the chunk is as large as
// the image only has offset 0.
func RandomTranspose(r Rand, w, h int, span bitmap.Span) image.Point {
	return image.Pt(
		between(r, 0, w-span.Width()),
		between(r, 0, h-span.Height()),
	)
}

func checkChunk(w, h, minW, minH int) error {
	switch {
	case minW < 1 || minH < 1:
		return fault.Configf(errors.Errorf("minimum chunk size %dx%d must be at least 1x1", minW, minH), "invalid chunk size")
	case minW >= w:
		return fault.Configf(errors.Errorf("minimum chunk width %d must be less than image width %d", minW, w), "invalid chunk size")
	case minH >= h:
		return fault.Configf(errors.Errorf("minimum chunk height %d must be less than image height %d", minH, h), "invalid chunk size")
	}
	return nil
}
