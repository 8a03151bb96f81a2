package sink

import (
	"image"
	"image/gif"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"chunkgif/pkg/fault"
	"chunkgif/pkg/proto"
)

const (
	MinSpeed     = 1
	MaxSpeed     = 30
	DefaultSpeed = 10
)

type GIFOptions struct {
	// Speed trades palette quality for encoding time, 1 (best) to 30 (fastest).
	Speed int
	// LoopCount follows image/gif: 0 loops forever, -1 plays once.
	LoopCount int
	// Dither enables Floyd-Steinberg error diffusion.
	Dither bool
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{Speed: DefaultSpeed}
}

func (o GIFOptions) Validate() error {
	if o.Speed < MinSpeed || o.Speed > MaxSpeed {
		return fault.Configf(errors.Errorf("speed %d out of range [%d, %d]", o.Speed, MinSpeed, MaxSpeed), "invalid gif speed")
	}
	if o.LoopCount < -1 || o.LoopCount > 0xFFFF {
		return fault.Configf(errors.Errorf("loop count %d out of range [-1, 65535]", o.LoopCount), "invalid gif loop count")
	}
	return nil
}

// NewGIF creates the animation file right away so an unwritable output fails
// before any work is done. Frames are quantized as they arrive and kept in
// memory, one byte per pixel, so a run holds about frames*w*h bytes until
// Close encodes them. The file stays empty until then.
func NewGIF(fs afero.Fs, path string, w, h int, opts GIFOptions, logger *zap.Logger) (*GIF, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := fs.Create(path)
	if err != nil {
		return nil, fault.Outputf(path, err, "couldn't create output file")
	}

	return &GIF{
		f:      f,
		path:   path,
		bounds: image.Rect(0, 0, w, h),
		opts:   opts,
		log:    logger.With(zap.String("via", "gif"), zap.String("path", path)),
	}, nil
}

type GIF struct {
	f      afero.File
	path   string
	bounds image.Rectangle
	opts   GIFOptions
	log    *zap.Logger
	anim   gif.GIF
	closed bool
}

var _ proto.FrameSink = (*GIF)(nil)

func (g *GIF) WriteFrame(fr proto.Frame) error {
	if g.closed {
		return fault.Encodef(g.path, errors.New("animation already finalized"), "couldn't write frame %d", fr.Index)
	}
	if fr.Image.Bounds() != g.bounds {
		return fault.Encodef(g.path, errors.Errorf("frame is %v, animation is %v", fr.Image.Bounds(), g.bounds), "couldn't write frame %d", fr.Index)
	}

	pal := buildPalette(fr.Image, g.opts.Speed)
	g.anim.Image = append(g.anim.Image, quantize(fr.Image, pal, g.opts.Dither))
	g.anim.Delay = append(g.anim.Delay, fr.Delay)

	g.log.With(zap.Int("index", fr.Index), zap.Int("colors", len(pal))).Debug("frame")
	return nil
}

// Frames returns the number of frames written so far.
func (g *GIF) Frames() int {
	return len(g.anim.Image)
}

// Close writes the animation and closes the file. Later calls are no-ops.
func (g *GIF) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true

	g.anim.LoopCount = g.opts.LoopCount
	g.anim.Config = image.Config{Width: g.bounds.Dx(), Height: g.bounds.Dy()}

	var err error
	if len(g.anim.Image) > 0 {
		err = gif.EncodeAll(g.f, &g.anim)
	}
	if errC := g.f.Close(); err == nil {
		err = errC
	}
	if err != nil {
		return fault.Encodef(g.path, err, "couldn't write animation")
	}

	g.log.With(zap.Int("frames", len(g.anim.Image))).Debug("finalized")
	return nil
}
