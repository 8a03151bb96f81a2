package mixer

import (
	"io"

	"go.uber.org/zap"

	"chunkgif/pkg/proto"
)

type Option func(c *Compositor)

// WithRand replaces the clock-seeded source of chunk positions.
func WithRand(r Rand) Option {
	return func(c *Compositor) {
		c.rand = r
	}
}

// WithStills exports every iteration (not the initial frame) as a still image.
func WithStills(w proto.StillWriter) Option {
	return func(c *Compositor) {
		c.stills = w
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compositor) {
		c.log = logger.With(zap.String("via", "compositor"))
	}
}

// WithProgress renders a progress bar of the iterations to w.
func WithProgress(w io.Writer) Option {
	return func(c *Compositor) {
		c.progress = w
	}
}
