/*Package pixfmt describes the 8-bit pixel formats understood by the frame
transforms.

Every fact about a format lives in a single table: how many bytes one pixel
occupies in a plane, how many planes the buffer holds, whether the format is
a true color encoding, and which format a 90 degree rotation in either
direction produces.  Adding a format is a change to the table only.
*/
package pixfmt

import (
	"fmt"
	"sort"
	"strings"
)

// Format is a pixel format tag
type Format int

const (
	// Unknown is the zero value and is never valid
	Unknown Format = iota

	// Mono8 is 8-bit monochrome
	Mono8

	// Mono8Signed is 8-bit monochrome with signed samples
	Mono8Signed

	// BayerBG8 is an 8-bit Bayer mosaic with blue at the origin
	BayerBG8

	// BayerGB8 is an 8-bit Bayer mosaic with green at the origin, blue to its right
	BayerGB8

	// BayerRG8 is an 8-bit Bayer mosaic with red at the origin
	BayerRG8

	// BayerGR8 is an 8-bit Bayer mosaic with green at the origin, red to its right
	BayerGR8

	// RGB8Planar holds three full-size planes, red then green then blue
	RGB8Planar

	// RGB8Packed interleaves R, G, B per pixel
	RGB8Packed

	// BGR8Packed interleaves B, G, R per pixel
	BGR8Packed
)

// info is one row of the format table
type info struct {
	name   string
	bpp    int // bytes per pixel within one plane
	planes int
	color  bool
	bayer  bool
	red    [2]int // x, y parity of the red site within a 2x2 Bayer tile
	cw90   Format
	ccw270 Format
}

// table is keyed by format.  Formats without a rotation successor of their
// own map to themselves.
var table = map[Format]info{
	Mono8:       {name: "Mono8", bpp: 1, planes: 1, cw90: Mono8, ccw270: Mono8},
	Mono8Signed: {name: "Mono8Signed", bpp: 1, planes: 1, cw90: Mono8Signed, ccw270: Mono8Signed},
	BayerBG8:    {name: "BayerBG8", bpp: 1, planes: 1, bayer: true, red: [2]int{1, 1}, cw90: BayerGB8, ccw270: BayerGR8},
	BayerGB8:    {name: "BayerGB8", bpp: 1, planes: 1, bayer: true, red: [2]int{0, 1}, cw90: BayerRG8, ccw270: BayerBG8},
	BayerRG8:    {name: "BayerRG8", bpp: 1, planes: 1, bayer: true, red: [2]int{0, 0}, cw90: BayerGR8, ccw270: BayerGB8},
	BayerGR8:    {name: "BayerGR8", bpp: 1, planes: 1, bayer: true, red: [2]int{1, 0}, cw90: BayerBG8, ccw270: BayerRG8},
	RGB8Planar:  {name: "RGB8Planar", bpp: 1, planes: 3, color: true, cw90: RGB8Planar, ccw270: RGB8Planar},
	RGB8Packed:  {name: "RGB8Packed", bpp: 3, planes: 1, color: true, cw90: RGB8Packed, ccw270: RGB8Packed},
	BGR8Packed:  {name: "BGR8Packed", bpp: 3, planes: 1, color: true, cw90: BGR8Packed, ccw270: BGR8Packed},
}

// Supported returns true if f is in the format table
func Supported(f Format) bool {
	_, ok := table[f]
	return ok
}

// IsColor returns true if f is a true color encoding.  Bayer mosaics are raw
// single-channel data and are not color by this definition.
func IsColor(f Format) bool {
	return table[f].color
}

// IsBayer returns true if f is one of the four Bayer mosaics
func IsBayer(f Format) bool {
	return table[f].bayer
}

// IsPlanar returns true if f stores more than one plane
func IsPlanar(f Format) bool {
	return table[f].planes > 1
}

// RedSite returns the column and row parity of the red pixels in a Bayer
// mosaic of format f.  ok is false for every other format.
func RedSite(f Format) (x, y int, ok bool) {
	i := table[f]
	if !i.bayer {
		return 0, 0, false
	}
	return i.red[0], i.red[1], true
}

// BytesPerPixel is the number of bytes one pixel occupies within a plane.
// It is zero for unsupported formats.
func BytesPerPixel(f Format) int {
	return table[f].bpp
}

// Planes is the number of planes in a buffer of format f.
// It is zero for unsupported formats.
func Planes(f Format) int {
	return table[f].planes
}

// RotatedCW90 returns the format of a frame of format f after it is rotated
// 90 degrees clockwise.  Bayer phase advances by one tile position.
func RotatedCW90(f Format) Format {
	if i, ok := table[f]; ok {
		return i.cw90
	}
	return f
}

// RotatedCCW270 returns the format of a frame of format f after it is rotated
// 90 degrees counter-clockwise (270 clockwise).
func RotatedCCW270(f Format) Format {
	if i, ok := table[f]; ok {
		return i.ccw270
	}
	return f
}

// String implements fmt.Stringer
func (f Format) String() string {
	if i, ok := table[f]; ok {
		return i.name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Parse converts a case-insensitive format name to a Format
func Parse(s string) (Format, error) {
	for f, i := range table {
		if strings.EqualFold(i.name, s) {
			return f, nil
		}
	}
	return Unknown, fmt.Errorf("unknown pixel format %q", s)
}

// Names returns the sorted names of every supported format
func Names() []string {
	out := make([]string, 0, len(table))
	for _, i := range table {
		out = append(out, i.name)
	}
	sort.Strings(out)
	return out
}

// MarshalText implements encoding.TextMarshaler
func (f Format) MarshalText() ([]byte, error) {
	if !Supported(f) {
		return nil, fmt.Errorf("cannot marshal unsupported pixel format %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Format) UnmarshalText(b []byte) error {
	p, err := Parse(string(b))
	if err != nil {
		return err
	}
	*f = p
	return nil
}
