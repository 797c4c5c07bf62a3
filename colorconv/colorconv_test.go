package colorconv

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

// mosaic builds a w x h bayer frame where every red site holds r, every
// green site g and every blue site b
func mosaic(t *testing.T, f pixfmt.Format, w, h int, r, g, b byte) *frame.Image {
	t.Helper()
	im, err := frame.New(f, uint32(w), uint32(h), 0)
	require.NoError(t, err)
	rx, ry, ok := pixfmt.RedSite(f)
	require.True(t, ok)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			rr, rc := y&1 == ry, x&1 == rx
			v := g
			if rr && rc {
				v = r
			} else if !rr && !rc {
				v = b
			}
			im.Buf[y*w+x] = v
		}
	}
	return im
}

func TestDemosaicUniformScene(t *testing.T) {
	for _, f := range []pixfmt.Format{pixfmt.BayerBG8, pixfmt.BayerGB8, pixfmt.BayerRG8, pixfmt.BayerGR8} {
		src := mosaic(t, f, 6, 4, 200, 100, 50)
		out, err := Demosaic(src)
		require.NoError(t, err)
		require.Equal(t, pixfmt.RGB8Planar, out.Format)
		n := 6 * 4
		for i := 0; i < n; i++ {
			if out.Buf[i] != 200 || out.Buf[n+i] != 100 || out.Buf[2*n+i] != 50 {
				t.Fatalf("%v pixel %d: got rgb (%d,%d,%d), want (200,100,50)",
					f, i, out.Buf[i], out.Buf[n+i], out.Buf[2*n+i])
			}
		}
	}
}

func TestDemosaicRejectsMono(t *testing.T) {
	im, _ := frame.New(pixfmt.Mono8, 2, 2, 0)
	_, err := Demosaic(im)
	assert.True(t, errors.Is(err, frame.ErrUnsupportedFormat))
}

func TestDeinterleavePacked(t *testing.T) {
	rgb, _ := frame.FromBuffer(pixfmt.RGB8Packed, 2, 1, 0, []byte{1, 2, 3, 4, 5, 6})
	bgr, _ := frame.FromBuffer(pixfmt.BGR8Packed, 2, 1, 0, []byte{3, 2, 1, 6, 5, 4})
	for _, im := range []*frame.Image{rgb, bgr} {
		out, err := Converter{}.ConvertToRGB8Planar(im)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 4, 2, 5, 3, 6}, out.Buf, "%v", im.Format)
	}
}

func TestPackedWithPadding(t *testing.T) {
	buf := []byte{1, 2, 3, 0xee, 4, 5, 6, 0xee}
	im, err := frame.FromBuffer(pixfmt.RGB8Packed, 1, 2, 1, buf)
	require.NoError(t, err)
	out, err := ToRGB8Planar(im)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 4, 2, 5, 3, 6}, out.Buf)
}

func TestPlanarIsCopied(t *testing.T) {
	im, _ := frame.FromBuffer(pixfmt.RGB8Planar, 1, 1, 0, []byte{7, 8, 9})
	out, err := ToRGB8Planar(im)
	require.NoError(t, err)
	assert.True(t, out.Equal(im))
	out.Buf[0] = 0
	assert.Equal(t, byte(7), im.Buf[0])
}

func TestMonoReplicated(t *testing.T) {
	im, _ := frame.FromBuffer(pixfmt.Mono8, 2, 1, 0, []byte{10, 20})
	out, err := ToRGB8Planar(im)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 10, 20, 10, 20}, out.Buf)
}

func TestReflect(t *testing.T) {
	assert.Equal(t, 1, reflect(-1, 4))
	assert.Equal(t, 2, reflect(4, 4))
	assert.Equal(t, 0, reflect(-1, 1))
	assert.Equal(t, 3, reflect(3, 4))
}
