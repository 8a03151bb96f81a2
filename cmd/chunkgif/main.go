package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	flag "github.com/spf13/pflag"
	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/fault"
	"chunkgif/pkg/media"
	"chunkgif/pkg/mixer"
	"chunkgif/pkg/sink"
)

type flags struct {
	output      *string
	iterations  *int
	recursive   *bool
	minWidth    *int
	minHeight   *int
	speed       *int
	delay       *int
	frameFormat *string
	loop        *int
	dither      *bool
	seed        *int64
	debug       *bool
	quiet       *bool
}

func newFlags(fs *flag.FlagSet) *flags {
	return &flags{
		output:      fs.StringP("output", "o", "", "output file (default: input name with .gif)"),
		iterations:  fs.IntP("iterations", "n", 0, "number of iterations (required)"),
		recursive:   fs.BoolP("recursive", "r", false, "copy chunks from the previous iteration's output instead of from the original image"),
		minWidth:    fs.IntP("min-width", "w", mixer.DefaultMinWidth, "minimum chunk width in pixels"),
		minHeight:   fs.IntP("min-height", "H", mixer.DefaultMinHeight, "minimum chunk height in pixels"),
		speed:       fs.IntP("speed", "s", sink.DefaultSpeed, "gif encoding speed, between 1 and 30"),
		delay:       fs.IntP("delay", "d", mixer.DefaultDelay, "gif frame delay in increments of 10ms"),
		frameFormat: fs.StringP("frame-format", "f", "", "export each frame as an individual image ("+strings.Join(media.Formats(), ", ")+")"),
		loop:        fs.Int("loop", 0, "gif loop count, 0 loops forever, -1 plays once"),
		dither:      fs.Bool("dither", false, "dither frames when reducing them to 256 colors"),
		seed:        fs.Int64("seed", 0, "seed for chunk positions, 0 picks one from the clock"),
		debug:       fs.Bool("debug", false, "set debug"),
		quiet:       fs.Bool("quiet", false, "hide progress bars"),
	}
}

// Options is everything the command line decided.
type Options struct {
	Input       string
	Output      string
	Params      mixer.Params
	GIF         sink.GIFOptions
	FrameFormat *imaging.Format
	Seed        int64
	Debug       bool
	Progress    io.Writer
}

func parseOptions(fs *flag.FlagSet, f *flags, args []string) (*Options, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fault.Configf(err, "invalid arguments")
	}
	if fs.NArg() != 1 {
		return nil, fault.Configf(errors.New("expected exactly one input file"), "invalid arguments")
	}
	if !fs.Changed("iterations") {
		return nil, fault.Configf(errors.New("--iterations is required"), "invalid arguments")
	}

	o := &Options{
		Input:  fs.Arg(0),
		Output: media.OutputPath(fs.Arg(0), *f.output),
		Params: mixer.Params{
			Iterations: *f.iterations,
			Recursive:  *f.recursive,
			MinWidth:   *f.minWidth,
			MinHeight:  *f.minHeight,
			Delay:      *f.delay,
		},
		GIF: sink.GIFOptions{
			Speed:     *f.speed,
			LoopCount: *f.loop,
			Dither:    *f.dither,
		},
		Seed:     *f.seed,
		Debug:    *f.debug,
		Progress: os.Stderr,
	}

	if *f.quiet {
		o.Progress = nil
	}

	if *f.frameFormat != "" {
		format, err := media.ParseFormat(*f.frameFormat)
		if err != nil {
			return nil, err
		}
		o.FrameFormat = &format
	}

	if o.Params.Iterations < 0 {
		return nil, fault.Configf(errors.Errorf("iterations %d must not be negative", o.Params.Iterations), "invalid arguments")
	}
	if err := o.GIF.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

func newLogger(o *Options) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if o.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("run", xid.New().String())), nil
}

func newLoader(fs afero.Fs, o *Options, logger *zap.Logger) *media.Loader {
	if o.Progress == nil {
		return media.NewLoader(fs, logger)
	}
	return media.NewLoader(fs, logger, media.WithDownloadProgress(o.Progress))
}

// newInput loads the input and checks that the chunk sizes fit it, before any
// output is created.
func newInput(o *Options, loader *media.Loader) (*bitmap.RGB, error) {
	img, err := loader.Load(o.Input)
	if err != nil {
		return nil, err
	}
	if err := o.Params.Validate(img.Width(), img.Height()); err != nil {
		return nil, err
	}
	return img, nil
}

func newGIF(fs afero.Fs, o *Options, img *bitmap.RGB, logger *zap.Logger) (*sink.GIF, error) {
	return sink.NewGIF(fs, o.Output, img.Width(), img.Height(), o.GIF, logger)
}

func newCompositor(fs afero.Fs, o *Options, img *bitmap.RGB, g *sink.GIF, logger *zap.Logger) *mixer.Compositor {
	opts := []mixer.Option{
		mixer.WithLogger(logger),
		mixer.WithRand(mixer.NewRand(o.Seed)),
	}
	if o.FrameFormat != nil {
		opts = append(opts, mixer.WithStills(sink.NewStills(fs, o.Output, *o.FrameFormat, logger)))
	}
	if o.Progress != nil {
		opts = append(opts, mixer.WithProgress(o.Progress))
	}
	return mixer.NewCompositor(img, g, o.Params, opts...)
}

func newApp(o *Options, fs afero.Fs, logger *zap.Logger) *fx.App {
	return fx.New(
		fx.Supply(o),
		fx.Provide(
			func() *zap.Logger { return logger },
			func() afero.Fs { return fs },
			newLoader,
			newInput,
			newGIF,
			newCompositor,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			if !o.Debug {
				return fxevent.NopLogger
			}
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(run),
	)
}

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Composite an image by repeatedly layering chunks over itself\n\nUsage: %s [flags] <input>\n", os.Args[0])
		flag.PrintDefaults()
	}

	f := newFlags(flag.CommandLine)
	o, err := parseOptions(flag.CommandLine, f, os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(o)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = newApp(o, afero.NewOsFs(), logger).Err()
	_ = logger.Sync()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(o *Options, fs afero.Fs, g *sink.GIF, c *mixer.Compositor, logger *zap.Logger) error {
	if err := c.Run(); err != nil {
		return err
	}

	log := logger.With(zap.String("output", o.Output), zap.Int("frames", g.Frames()))
	if st, err := fs.Stat(o.Output); err == nil {
		log = log.With(zap.String("size", bytesize.New(float64(st.Size())).String()))
	}
	log.Info("done")

	return nil
}
