package sink

import (
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/fault"
	"chunkgif/pkg/media"
	"chunkgif/pkg/proto"
)

// NewStills writes iterations next to the animation at output, see media.StillPath.
func NewStills(fs afero.Fs, output string, format imaging.Format, logger *zap.Logger) *Stills {
	return &Stills{
		fs:     fs,
		output: output,
		format: format,
		log:    logger.With(zap.String("via", "stills")),
	}
}

type Stills struct {
	fs     afero.Fs
	output string
	format imaging.Format
	log    *zap.Logger
}

var _ proto.StillWriter = (*Stills)(nil)

func (s *Stills) WriteStill(index int, img *bitmap.RGB) error {
	path := media.StillPath(s.output, index, s.format)

	f, err := s.fs.Create(path)
	if err != nil {
		return fault.Encodef(path, err, "couldn't create frame file")
	}

	err = imaging.Encode(f, bitmap.ToNRGBA(img), s.format)
	if errC := f.Close(); err == nil {
		err = errC
	}
	if err != nil {
		return fault.Encodef(path, err, "couldn't write frame %d", index)
	}

	s.log.With(zap.Int("index", index), zap.String("path", path)).Debug("still")
	return nil
}
