package virtual

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/proto"
)

var ErrInjected = errors.New("injected failure")

// Mock returns a sink that keeps copies of everything written to it.
func Mock(logger *zap.Logger) *Mocker {
	return &Mocker{l: logger, FailAt: -1}
}

// Mocker records frames and stills in memory. It implements both
// proto.FrameSink and proto.StillWriter.
type Mocker struct {
	l *zap.Logger

	Frames []proto.Frame
	Stills map[int]*bitmap.RGB
	Closed int
	// FailAt makes the write of the frame with that index fail. -1 disables it.
	FailAt int
}

var _ proto.FrameSink = (*Mocker)(nil)
var _ proto.StillWriter = (*Mocker)(nil)

func (m *Mocker) WriteFrame(f proto.Frame) error {
	if f.Index == m.FailAt {
		return ErrInjected
	}
	m.l.With(
		zap.Int("index", f.Index),
		zap.Int("w", f.Image.Width()),
		zap.Int("h", f.Image.Height()),
		zap.Int("delay", f.Delay),
	).Info("write-frame")
	f.Image = f.Image.Clone()
	m.Frames = append(m.Frames, f)
	return nil
}

func (m *Mocker) WriteStill(index int, img *bitmap.RGB) error {
	m.l.With(zap.Int("index", index)).Info("write-still")
	if m.Stills == nil {
		m.Stills = make(map[int]*bitmap.RGB)
	}
	m.Stills[index] = img.Clone()
	return nil
}

func (m *Mocker) Close() error {
	m.l.With(zap.Int("frames", len(m.Frames))).Info("close")
	m.Closed++
	return nil
}
