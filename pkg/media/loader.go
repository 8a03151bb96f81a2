package media

import (
	"bytes"
	"io"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/fault"
)

func NewLoader(fs afero.Fs, logger *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:  fs,
		cli: resty.New().SetDoNotParseResponse(true),
		log: logger.With(zap.String("via", "loader")),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

type LoaderOption func(l *Loader)

// WithDownloadProgress renders a byte progress bar to w for remote inputs.
func WithDownloadProgress(w io.Writer) LoaderOption {
	return func(l *Loader) {
		l.progress = w
	}
}

// Loader reads an input image from the filesystem or over http(s) and
// normalizes it to a packed RGB buffer.
type Loader struct {
	fs       afero.Fs
	cli      *resty.Client
	log      *zap.Logger
	progress io.Writer
}

// IsRemote reports whether ref is an http(s) URL rather than a path.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func remotePath(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return u.Path
}

// Load decodes ref. Every failure is a fault.Input error naming ref.
func (l *Loader) Load(ref string) (*bitmap.RGB, error) {
	var bs []byte
	var err error

	if IsRemote(ref) {
		bs, err = l.download(ref)
	} else {
		bs, err = afero.ReadFile(l.fs, ref)
	}
	if err != nil {
		return nil, fault.Inputf(ref, err, "couldn't open input file")
	}

	img, err := imaging.Decode(bytes.NewReader(bs), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fault.Inputf(ref, errors.Wrap(err, "decode"), "couldn't open input file")
	}

	buf := bitmap.FromImage(img)
	if buf.Width() == 0 || buf.Height() == 0 {
		return nil, fault.Inputf(ref, errors.New("image is empty"), "couldn't open input file")
	}

	l.log.With(
		zap.String("ref", ref),
		zap.Int("width", buf.Width()),
		zap.Int("height", buf.Height()),
	).Debug("loaded")

	return buf, nil
}

func (l *Loader) download(ref string) ([]byte, error) {
	resp, err := l.cli.R().Get(ref)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.IsError() {
		return nil, errors.Errorf("http status %s", resp.Status())
	}

	var w io.Writer = io.Discard
	if l.progress != nil {
		w = progressbar.NewOptions64(
			resp.RawResponse.ContentLength,
			progressbar.OptionSetWriter(l.progress),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
		)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, w), resp.RawBody()); err != nil {
		return nil, errors.Wrap(err, "download")
	}

	return buf.Bytes(), nil
}
