package mixer

import (
	"io"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/proto"
)

type State int

const (
	Initializing State = iota
	Iterating
	Finalized
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Iterating:
		return "iterating"
	case Finalized:
		return "finalized"
	}
	return "unknown"
}

// NewCompositor prepares a run over img. img is copied: the caller keeps ownership.
func NewCompositor(img *bitmap.RGB, sink proto.FrameSink, params Params, opts ...Option) *Compositor {
	c := &Compositor{
		source: img.Clone(),
		work:   img.Clone(),
		sink:   sink,
		params: params,
		// options
		rand: nil,
		log:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rand == nil {
		c.rand = NewRand(0)
	}

	return c
}

// Compositor turns a still into an animation by pasting random chunks of a
// source buffer onto a work buffer, one chunk per frame.
type Compositor struct {
	source *bitmap.RGB
	work   *bitmap.RGB
	sink   proto.FrameSink
	params Params
	state  State
	// options
	rand     Rand
	stills   proto.StillWriter
	log      *zap.Logger
	progress io.Writer
}

func (c *Compositor) State() State {
	return c.state
}

// Run emits the untouched image as frame 0, then one frame per iteration, and
// closes the sink. The sink is closed exactly once, also when an iteration
// fails, so whatever was written so far stays on disk.
func (c *Compositor) Run() (err error) {
	if c.state != Initializing {
		return errors.Errorf("compositor is %s", c.state)
	}

	if err := c.params.Validate(c.source.Width(), c.source.Height()); err != nil {
		return err
	}

	c.state = Iterating
	defer func() {
		c.state = Finalized
		if errC := c.sink.Close(); errC != nil && err == nil {
			err = errC
		}
	}()

	c.log.With(
		zap.Int("width", c.source.Width()),
		zap.Int("height", c.source.Height()),
		zap.Int("iterations", c.params.Iterations),
		zap.Bool("recursive", c.params.Recursive),
	).Info("compositing")

	if err := c.emit(0); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if c.progress != nil && c.params.Iterations > 0 {
		bar = progressbar.NewOptions(
			c.params.Iterations,
			progressbar.OptionSetWriter(c.progress),
			progressbar.OptionSetDescription("compositing"),
			progressbar.OptionShowCount(),
		)
		defer func() {
			_ = bar.Finish()
		}()
	}

	for i := 1; i <= c.params.Iterations; i++ {
		if err := c.step(i); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return nil
}

func (c *Compositor) step(i int) error {
	w, h := c.source.Width(), c.source.Height()

	span, err := RandomSpan(c.rand, w, h, c.params.MinWidth, c.params.MinHeight)
	if err != nil {
		return err
	}
	to := RandomTranspose(c.rand, w, h, span)

	if !span.Within(c.source.Bounds()) || !span.At(to).Within(c.work.Bounds()) {
		return errors.Errorf("chunk %s to %v out of bounds", span, to)
	}

	bitmap.CopyChunk(c.work, c.source, span, to)

	if c.params.Recursive {
		c.source = c.work.Clone()
	}

	c.log.With(
		zap.Int("i", i),
		zap.Stringer("span", span),
		zap.Stringer("to", to),
	).Debug("chunk")

	if err := c.emit(i); err != nil {
		return err
	}

	if c.stills != nil {
		if err := c.stills.WriteStill(i, c.work); err != nil {
			return err
		}
	}

	return nil
}

func (c *Compositor) emit(i int) error {
	return c.sink.WriteFrame(proto.Frame{
		Index: i,
		Image: c.work,
		Delay: c.params.Delay,
	})
}
