package pixfmt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleRotatedCW90() {
	f := BayerBG8
	for i := 0; i < 4; i++ {
		f = RotatedCW90(f)
		fmt.Println(f)
	}
	// Output:
	// BayerGB8
	// BayerRG8
	// BayerGR8
	// BayerBG8
}

func TestBayerRemapTable(t *testing.T) {
	cases := []struct {
		in, cw, ccw Format
	}{
		{BayerBG8, BayerGB8, BayerGR8},
		{BayerGB8, BayerRG8, BayerBG8},
		{BayerRG8, BayerGR8, BayerGB8},
		{BayerGR8, BayerBG8, BayerRG8},
		{Mono8, Mono8, Mono8},
	}
	for _, c := range cases {
		assert.Equal(t, c.cw, RotatedCW90(c.in), "cw90 of %v", c.in)
		assert.Equal(t, c.ccw, RotatedCCW270(c.in), "ccw270 of %v", c.in)
	}
}

func TestRotationsAreInverse(t *testing.T) {
	for _, name := range Names() {
		f, err := Parse(name)
		require.NoError(t, err)
		if RotatedCCW270(RotatedCW90(f)) != f {
			t.Errorf("ccw270(cw90(%v)) did not return to %v", f, f)
		}
	}
}

func TestNonBayerTagsUnchangedByRotation(t *testing.T) {
	for _, f := range []Format{RGB8Planar, RGB8Packed, BGR8Packed, Mono8Signed} {
		assert.Equal(t, f, RotatedCW90(f))
		assert.Equal(t, f, RotatedCCW270(f))
	}
}

func TestCapabilities(t *testing.T) {
	assert.True(t, IsColor(RGB8Planar))
	assert.True(t, IsColor(BGR8Packed))
	assert.False(t, IsColor(BayerRG8), "bayer is raw single channel data")
	assert.False(t, IsColor(Mono8))
	assert.True(t, IsBayer(BayerGR8))
	assert.True(t, IsPlanar(RGB8Planar))
	assert.Equal(t, 3, BytesPerPixel(RGB8Packed))
	assert.Equal(t, 3, Planes(RGB8Planar))
	assert.False(t, Supported(Unknown))
	assert.Equal(t, 0, BytesPerPixel(Unknown))
}

func TestParseIsCaseInsensitive(t *testing.T) {
	f, err := Parse("bayerrg8")
	require.NoError(t, err)
	assert.Equal(t, BayerRG8, f)

	_, err = Parse("Mono16")
	assert.Error(t, err)
}

func TestTextRoundTrip(t *testing.T) {
	var f Format
	require.NoError(t, f.UnmarshalText([]byte("RGB8Planar")))
	b, err := f.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RGB8Planar", string(b))

	_, err = Unknown.MarshalText()
	assert.Error(t, err)
}

func TestRedSiteFollowsRotation(t *testing.T) {
	for _, f := range []Format{BayerBG8, BayerGB8, BayerRG8, BayerGR8} {
		x, y, ok := RedSite(f)
		require.True(t, ok, f.String())
		// (x, y) in a 2x2 tile lands on (1-y, x) after a clockwise turn
		nx, ny, _ := RedSite(RotatedCW90(f))
		assert.Equal(t, [2]int{1 - y, x}, [2]int{nx, ny}, f.String())
	}
	for _, f := range []Format{Mono8, RGB8Planar, BGR8Packed} {
		_, _, ok := RedSite(f)
		assert.False(t, ok, f.String())
	}
}
