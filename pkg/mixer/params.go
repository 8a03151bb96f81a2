package mixer

import (
	"github.com/pkg/errors"

	"chunkgif/pkg/fault"
)

const (
	DefaultMinWidth  = 16
	DefaultMinHeight = 16
	DefaultDelay     = 10
)

// Params drives one compositing run.
type Params struct {
	// Iterations is the number of chunk copies; the animation has Iterations+1 frames.
	Iterations int
	// Recursive makes every iteration copy from the previous iteration's output
	// instead of the original image.
	Recursive bool
	MinWidth  int
	MinHeight int
	// Delay is the per-frame display time handed to the sink, in 1/100s.
	Delay int
}

func DefaultParams() Params {
	return Params{
		MinWidth:  DefaultMinWidth,
		MinHeight: DefaultMinHeight,
		Delay:     DefaultDelay,
	}
}

// Validate checks the parameters against the size of the image they will run on.
func (p Params) Validate(w, h int) error {
	if p.Iterations < 0 {
		return fault.Configf(errors.Errorf("iterations %d must not be negative", p.Iterations), "invalid iteration count")
	}
	if p.Delay < 0 || p.Delay > 0xFFFF {
		return fault.Configf(errors.Errorf("delay %d out of range [0, 65535]", p.Delay), "invalid frame delay")
	}
	return checkChunk(w, h, p.MinWidth, p.MinHeight)
}
