package main

import (
	"bufio"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.jpl.nasa.gov/bdube/framexform/frame"
	httpcam "github.jpl.nasa.gov/bdube/framexform/generichttp/camera"
	"github.jpl.nasa.gov/bdube/framexform/rawframe"
)

type writeOpts struct {
	zstd    bool
	debayer bool
}

// readFile reads a frame from a .glrf file or any registered image format
func readFile(fn string) (*frame.Image, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(fn), ".glrf") {
		img, err := rawframe.Read(bufio.NewReader(f))
		return img, errors.Wrap(err, fn)
	}
	im, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, fn)
	}
	return frame.FromImage(im)
}

// writeFile writes img to fn, encoded according to its extension
func writeFile(fn string, img *frame.Image, opts writeOpts) (err error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fn), "."))
	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	switch ext {
	case "glrf":
		err = rawframe.Write(w, img, opts.zstd)
	case "fits":
		err = httpcam.WriteFits(w, nil, []*frame.Image{img})
	default:
		err = httpcam.Encode(w, img, ext, opts.debayer)
	}
	if err != nil {
		return errors.Wrap(err, fn)
	}
	return w.Flush()
}
