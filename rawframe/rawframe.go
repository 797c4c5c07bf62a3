// Package rawframe reads and writes self-describing raw frame files.
//
// A file is a fixed header followed by the frame's pixel data with padding
// removed.  The payload may be zstd compressed, which is recorded in the
// header flags.
//
//	offset  size  field
//	0       4     magic "GLRF"
//	4       1     version (1)
//	5       1     flags, bit 0 = zstd payload
//	6       1     n, length of the format name
//	7       n     format name, e.g. "BayerRG8"
//	7+n     4     width, big endian
//	11+n    4     height, big endian
//	15+n    ...   payload
package rawframe

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
)

const (
	version  = 1
	flagZstd = 1 << 0
)

var magic = [4]byte{'G', 'L', 'R', 'F'}

// ErrNotRawFrame is returned when a stream does not begin with the raw frame magic
var ErrNotRawFrame = errors.New("not a raw frame file")

// Write streams img to w.  If compress is true the payload is zstd compressed.
func Write(w io.Writer, img *frame.Image, compress bool) error {
	c, err := img.Compact()
	if err != nil {
		return err
	}
	if c.Width == 0 || c.Height == 0 {
		return errors.Wrapf(frame.ErrInvalidDimension, "%dx%d raw frame", c.Width, c.Height)
	}
	name := c.Format.String()
	hdr := make([]byte, 0, 15+len(name))
	hdr = append(hdr, magic[:]...)
	var flags byte
	if compress {
		flags |= flagZstd
	}
	hdr = append(hdr, version, flags, byte(len(name)))
	hdr = append(hdr, name...)
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], c.Width)
	binary.BigEndian.PutUint32(dims[4:], c.Height)
	hdr = append(hdr, dims[:]...)
	if _, err = w.Write(hdr); err != nil {
		return errors.Wrap(err, "writing raw frame header")
	}

	if !compress {
		_, err = w.Write(c.Buf)
		return errors.Wrap(err, "writing raw frame payload")
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "creating zstd encoder")
	}
	if _, err = enc.Write(c.Buf); err != nil {
		enc.Close()
		return errors.Wrap(err, "compressing raw frame payload")
	}
	return errors.Wrap(enc.Close(), "flushing zstd payload")
}

// Read parses a raw frame from r.  Headers declaring an empty frame or one
// larger than frame.MaxBytes are rejected with frame.ErrInvalidDimension.
func Read(r io.Reader) (*frame.Image, error) {
	br := bufio.NewReader(r)
	var fixed [7]byte
	if _, err := io.ReadFull(br, fixed[:]); err != nil {
		return nil, errors.Wrap(err, "reading raw frame header")
	}
	if [4]byte{fixed[0], fixed[1], fixed[2], fixed[3]} != magic {
		return nil, ErrNotRawFrame
	}
	if fixed[4] != version {
		return nil, errors.Errorf("raw frame version %d is not supported", fixed[4])
	}
	flags := fixed[5]
	rest := make([]byte, int(fixed[6])+8)
	if _, err := io.ReadFull(br, rest); err != nil {
		return nil, errors.Wrap(err, "reading raw frame header")
	}
	f, err := pixfmt.Parse(string(rest[:fixed[6]]))
	if err != nil {
		return nil, errors.Wrap(frame.ErrUnsupportedFormat, err.Error())
	}
	dims := rest[fixed[6]:]
	w := binary.BigEndian.Uint32(dims[:4])
	h := binary.BigEndian.Uint32(dims[4:])

	if w == 0 || h == 0 {
		return nil, errors.Wrapf(frame.ErrInvalidDimension, "%dx%d raw frame", w, h)
	}
	// frame.New refuses shapes over frame.MaxBytes before allocating
	img, err := frame.New(f, w, h, 0)
	if err != nil {
		return nil, err
	}
	var payload io.Reader = br
	if flags&flagZstd != 0 {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd decoder")
		}
		defer dec.Close()
		payload = dec
	}
	if _, err = io.ReadFull(payload, img.Buf); err != nil {
		return nil, errors.Wrapf(frame.ErrBufferSizeMismatch, "payload for %dx%d %v: %v", w, h, f, err)
	}
	return img, nil
}
