package proto

import (
	"chunkgif/pkg/bitmap"
)

// Frame is one image of the animation. Image is owned by the producer and is
// mutated again after WriteFrame returns: sinks that keep pixels must copy them.
type Frame struct {
	Index int
	Image *bitmap.RGB
	// Delay is the display time in the sink's native unit (1/100s for GIF).
	Delay int
}

// FrameSink assembles frames into an animation.
type FrameSink interface {
	WriteFrame(f Frame) error
	// Close finalizes the animation. It is called exactly once per run.
	Close() error
}

// StillWriter persists single iterations as standalone images.
type StillWriter interface {
	WriteStill(index int, img *bitmap.RGB) error
}
