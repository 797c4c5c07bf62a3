package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/theckman/yacspin"

	"github.jpl.nasa.gov/bdube/framexform/camera"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
	"github.jpl.nasa.gov/bdube/framexform/rotrescale"
)

// Version is the version number.  Typically injected via ldflags with git build
var Version = "1"

type synthCmd struct {
	Out      string        `arg:"" help:"output file; the extension picks the encoding"`
	Width    uint32        `default:"640" help:"frame width"`
	Height   uint32        `default:"480" help:"frame height"`
	Format   string        `default:"BayerRG8" help:"pixel format"`
	Exposure time.Duration `default:"10ms" help:"exposure time of the simulated sensor"`
	Zstd     bool          `help:"compress .glrf output"`
}

func (c *synthCmd) Run() error {
	pf, err := pixfmt.Parse(c.Format)
	if err != nil {
		return err
	}
	m, err := camera.NewMock(c.Width, c.Height, pf)
	if err != nil {
		return err
	}
	if err = m.SetExposureTime(c.Exposure); err != nil {
		return err
	}
	img, err := m.GetFrame()
	if err != nil {
		return err
	}
	return writeFile(c.Out, img, writeOpts{zstd: c.Zstd})
}

type rotateCmd struct {
	In        string `arg:"" type:"existingfile" help:"input frame"`
	Out       string `arg:"" help:"output file"`
	Direction string `default:"cw90" enum:"cw90,ccw270" help:"cw90 or ccw270"`
	Zstd      bool   `help:"compress .glrf output"`
}

func (c *rotateCmd) Run() error {
	o, err := rotrescale.ParseOrientation(c.Direction)
	if err != nil {
		return err
	}
	return process(c.In, c.Out, rotrescale.Pipeline{Rotate: o}, writeOpts{zstd: c.Zstd})
}

type rescaleCmd struct {
	In     string `arg:"" type:"existingfile" help:"input frame"`
	Out    string `arg:"" help:"output file"`
	Factor uint32 `short:"f" required:"" help:"integer decimation factor"`
	Zstd   bool   `help:"compress .glrf output"`
}

func (c *rescaleCmd) Run() error {
	if c.Factor == 0 {
		return errors.New("factor must be at least 1")
	}
	return process(c.In, c.Out, rotrescale.Pipeline{Rescale: c.Factor}, writeOpts{zstd: c.Zstd})
}

type convertCmd struct {
	In      string `arg:"" type:"existingfile" help:"input frame"`
	Out     string `arg:"" help:"output file"`
	Debayer bool   `help:"demosaic bayer frames when writing raster images"`
	Zstd    bool   `help:"compress .glrf output"`
}

// Run re-encodes the frame without touching its shape; no normalization
func (c *convertCmd) Run() error {
	img, err := readFile(c.In)
	if err != nil {
		return err
	}
	return writeFile(c.Out, img, writeOpts{zstd: c.Zstd, debayer: c.Debayer})
}

type batchCmd struct {
	In      []string `arg:"" help:"input frames"`
	OutDir  string   `short:"o" required:"" type:"path" help:"output folder"`
	Ext     string   `default:".glrf" help:"extension of the outputs"`
	Rotate  string   `default:"none" enum:"none,cw90,ccw270" help:"rotation applied after rescaling"`
	Rescale uint32   `default:"1" help:"integer decimation factor"`
	Zstd    bool     `help:"compress .glrf output"`
}

func (c *batchCmd) Run() error {
	o, err := rotrescale.ParseOrientation(c.Rotate)
	if err != nil {
		return err
	}
	p := rotrescale.Pipeline{Rotate: o, Rescale: c.Rescale}
	if err = os.MkdirAll(c.OutDir, 0777); err != nil {
		return err
	}
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Suffix:            " transforming",
		SuffixAutoColon:   true,
		StopCharacter:     "✓",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"},
	})
	if err != nil {
		return err
	}
	if err = spinner.Start(); err != nil {
		return err
	}
	for i, in := range c.In {
		spinner.Message(fmt.Sprintf("%d/%d %s", i+1, len(c.In), filepath.Base(in)))
		out := filepath.Join(c.OutDir, strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))+c.Ext)
		if err := process(in, out, p, writeOpts{zstd: c.Zstd}); err != nil {
			spinner.StopFailMessage(err.Error())
			spinner.StopFail()
			return errors.Wrap(err, in)
		}
	}
	spinner.StopMessage(fmt.Sprintf("%d frames written to %s", len(c.In), c.OutDir))
	return spinner.Stop()
}

type versionCmd struct{}

func (versionCmd) Run() error {
	fmt.Printf("xform-cli version %v\n", Version)
	return nil
}

var cli struct {
	Synth   synthCmd   `cmd:"" help:"render a synthetic frame"`
	Rotate  rotateCmd  `cmd:"" help:"rotate a frame by 90 degrees"`
	Rescale rescaleCmd `cmd:"" help:"decimate a frame by an integer factor"`
	Convert convertCmd `cmd:"" help:"change the encoding of a frame"`
	Batch   batchCmd   `cmd:"" help:"rescale and rotate many frames"`
	Version versionCmd `cmd:"" help:"print the version"`
}

// process reads in, runs it through p, and writes it to out
func process(in, out string, p rotrescale.Pipeline, opts writeOpts) error {
	img, err := readFile(in)
	if err != nil {
		return err
	}
	img, err = p.Apply(rotrescale.Default, img)
	if err != nil {
		return err
	}
	return writeFile(out, img, opts)
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("xform-cli"),
		kong.Description("xform-cli rescales, rotates, and re-encodes 8-bit camera frames.\n\n"+
			"Frames are read from .glrf, .png, .jpg, .tiff, or .bmp files and written to any of those or .fits.\n"+
			"Pixel formats: "+strings.Join(pixfmt.Names(), ", ")),
		kong.UsageOnError())
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
