package sink

import (
	"image"
	"image/gif"
	"math/rand"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chunkgif/pkg/bitmap"
	"chunkgif/pkg/fault"
	"chunkgif/pkg/media"
	"chunkgif/pkg/mixer"
	"chunkgif/pkg/proto"
)

func checker(w, h, cell int) *bitmap.RGB {
	img := bitmap.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetPixel(x, y, bitmap.Pixel{R: 0xE0, G: 0x40, B: 0x10})
			} else {
				img.SetPixel(x, y, bitmap.Pixel{R: 0x10, G: 0x80, B: 0xF0})
			}
		}
	}
	return img
}

func noise(w, h int, seed int64) *bitmap.RGB {
	img := bitmap.New(w, h)
	_, _ = rand.New(rand.NewSource(seed)).Read(img.Bytes())
	return img
}

func decodeGIF(t *testing.T, fs afero.Fs, path string) *gif.GIF {
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	return g
}

func samePixels(t *testing.T, want *bitmap.RGB, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds(), got.Bounds())
	require.True(t, want.Equal(bitmap.FromImage(got)))
}

func TestGIFSingleFrame(t *testing.T) {
	fs := afero.NewMemMapFs()
	img := checker(40, 30, 5)

	g, err := NewGIF(fs, "out.gif", 40, 30, DefaultGIFOptions(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, g.WriteFrame(proto.Frame{Image: img, Delay: 10}))
	require.Equal(t, 1, g.Frames())
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())

	anim := decodeGIF(t, fs, "out.gif")
	require.Len(t, anim.Image, 1)
	require.Equal(t, []int{10}, anim.Delay)
	samePixels(t, img, anim.Image[0])
}

func TestGIFFrames(t *testing.T) {
	fs := afero.NewMemMapFs()
	opts := DefaultGIFOptions()
	opts.LoopCount = 3

	g, err := NewGIF(fs, "a.gif", 16, 16, opts, zap.NewNop())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, g.WriteFrame(proto.Frame{Index: i, Image: checker(16, 16, 1+i), Delay: 7}))
	}
	require.NoError(t, g.Close())

	anim := decodeGIF(t, fs, "a.gif")
	require.Len(t, anim.Image, 4)
	assert.Equal(t, []int{7, 7, 7, 7}, anim.Delay)
	assert.Equal(t, 3, anim.LoopCount)
	for i, p := range anim.Image {
		samePixels(t, checker(16, 16, 1+i), p)
	}

	err = g.WriteFrame(proto.Frame{Image: checker(16, 16, 2)})
	require.Error(t, err)
	assert.Equal(t, fault.Encode, fault.KindOf(err))
}

func TestGIFWrittenOnClose(t *testing.T) {
	fs := afero.NewMemMapFs()
	g, err := NewGIF(fs, "p.gif", 12, 12, DefaultGIFOptions(), zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, g.WriteFrame(proto.Frame{Index: i, Image: checker(12, 12, 2+i), Delay: 5}))
	}
	st, err := fs.Stat("p.gif")
	require.NoError(t, err)
	assert.Zero(t, st.Size())
	assert.Equal(t, 3, g.Frames())

	require.NoError(t, g.Close())
	st, err = fs.Stat("p.gif")
	require.NoError(t, err)
	assert.NotZero(t, st.Size())
	require.Len(t, decodeGIF(t, fs, "p.gif").Image, 3)
}

func TestGIFErrors(t *testing.T) {
	ro := afero.NewReadOnlyFs(afero.NewMemMapFs())
	_, err := NewGIF(ro, "out.gif", 8, 8, DefaultGIFOptions(), zap.NewNop())
	require.Error(t, err)
	assert.Equal(t, fault.Output, fault.KindOf(err))
	assert.Contains(t, err.Error(), "'out.gif'")

	for _, speed := range []int{0, 31, -4} {
		_, err = NewGIF(afero.NewMemMapFs(), "out.gif", 8, 8, GIFOptions{Speed: speed}, zap.NewNop())
		assert.Equal(t, fault.Config, fault.KindOf(err), "speed %d", speed)
	}

	g, err := NewGIF(afero.NewMemMapFs(), "out.gif", 8, 8, DefaultGIFOptions(), zap.NewNop())
	require.NoError(t, err)
	err = g.WriteFrame(proto.Frame{Image: checker(9, 8, 2)})
	assert.Equal(t, fault.Encode, fault.KindOf(err))
}

func TestBuildPalette(t *testing.T) {
	few := buildPalette(checker(32, 32, 4), DefaultSpeed)
	require.Len(t, few, 2)

	for _, speed := range []int{MinSpeed, DefaultSpeed, MaxSpeed} {
		pal := buildPalette(noise(64, 64, int64(speed)), speed)
		require.NotEmpty(t, pal)
		require.LessOrEqual(t, len(pal), maxColors)
	}

	// more than 256 distinct colors go through median cut
	many := noise(64, 64, 3)
	require.Greater(t, len(histogram(sampleOf(many, MinSpeed))), maxColors)
	pal := buildPalette(many, MinSpeed)
	assert.Greater(t, len(pal), maxColors/2)
	assert.LessOrEqual(t, len(pal), maxColors)
	p := quantize(many, pal, false)
	for _, idx := range p.Pix {
		require.Less(t, int(idx), len(pal))
	}

	// a higher speed samples fewer pixels
	img := noise(60, 60, 1)
	assert.Greater(t, len(histogram(sampleOf(img, 1))), 60*60-20)
	assert.Less(t, len(histogram(sampleOf(img, 30))), 60*60/20)
}

func TestQuantize(t *testing.T) {
	img := noise(48, 32, 9)
	pal := buildPalette(img, 1)

	for _, dither := range []bool{false, true} {
		p := quantize(img, pal, dither)
		require.Equal(t, img.Bounds(), p.Bounds())
		for _, idx := range p.Pix {
			require.Less(t, int(idx), len(pal))
		}
	}

	// exact palettes round-trip without loss
	c := checker(20, 20, 3)
	p := quantize(c, buildPalette(c, 1), false)
	samePixels(t, c, p)
}

func TestStills(t *testing.T) {
	fs := afero.NewMemMapFs()
	img := noise(12, 10, 4)

	s := NewStills(fs, "out/anim.gif", imaging.PNG, zap.NewNop())
	require.NoError(t, s.WriteStill(2, img))

	f, err := fs.Open("out/anim.2.png")
	require.NoError(t, err)
	defer f.Close()
	got, err := imaging.Decode(f)
	require.NoError(t, err)
	samePixels(t, img, got)

	ro := NewStills(afero.NewReadOnlyFs(fs), "anim.gif", imaging.BMP, zap.NewNop())
	err = ro.WriteStill(1, img)
	require.Error(t, err)
	assert.Equal(t, fault.Encode, fault.KindOf(err))
	assert.Contains(t, err.Error(), "'anim.1.bmp'")
}

func TestCompositorToGIF(t *testing.T) {
	fs := afero.NewMemMapFs()
	img := checker(64, 64, 8)

	g, err := NewGIF(fs, "anim.gif", 64, 64, DefaultGIFOptions(), zap.NewNop())
	require.NoError(t, err)
	stills := NewStills(fs, "anim.gif", imaging.PNG, zap.NewNop())

	p := mixer.DefaultParams()
	p.Iterations = 5
	c := mixer.NewCompositor(img, g, p, mixer.WithRand(mixer.NewRand(11)), mixer.WithStills(stills))
	require.NoError(t, c.Run())

	anim := decodeGIF(t, fs, "anim.gif")
	require.Len(t, anim.Image, 6)
	samePixels(t, img, anim.Image[0])

	for i := 1; i <= 5; i++ {
		f, err := fs.Open(media.StillPath("anim.gif", i, imaging.PNG))
		require.NoError(t, err)
		still, err := imaging.Decode(f)
		_ = f.Close()
		require.NoError(t, err)
		// two colors only, so the gif frame is lossless too
		samePixels(t, bitmap.FromImage(still), anim.Image[i])
	}

	exists, err := afero.Exists(fs, "anim.0.png")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestCompositorZeroIterationsToGIF(t *testing.T) {
	fs := afero.NewMemMapFs()
	img := noise(20, 20, 2)

	g, err := NewGIF(fs, "one.gif", 20, 20, GIFOptions{Speed: 1}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mixer.NewCompositor(img, g, mixer.DefaultParams()).Run())

	anim := decodeGIF(t, fs, "one.gif")
	require.Len(t, anim.Image, 1)
	require.Equal(t, img.Bounds(), anim.Image[0].Bounds())
}
