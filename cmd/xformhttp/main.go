package main

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"
	yml "gopkg.in/yaml.v2"

	"github.jpl.nasa.gov/bdube/framexform/camera"
	"github.jpl.nasa.gov/bdube/framexform/generichttp"
	httpcam "github.jpl.nasa.gov/bdube/framexform/generichttp/camera"
	"github.jpl.nasa.gov/bdube/framexform/imgrec"
	"github.jpl.nasa.gov/bdube/framexform/pixfmt"
	"github.jpl.nasa.gov/bdube/framexform/rotrescale"
	"github.jpl.nasa.gov/bdube/framexform/server/middleware/locker"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "xform-http.yml"
	k              = koanf.New(".")
)

type recorder struct {
	// Root is the root folder to write to
	Root string `yaml:"Root" koanf:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `yaml:"Prefix" koanf:"Prefix"`

	// Enabled turns on recording of fits frames at boot
	Enabled bool `yaml:"Enabled" koanf:"Enabled"`
}

type sensor struct {
	Width  uint32 `yaml:"Width" koanf:"Width"`
	Height uint32 `yaml:"Height" koanf:"Height"`
	Format string `yaml:"Format" koanf:"Format"`
}

type pipeline struct {
	// Rotate is one of none, cw90, ccw270
	Rotate string `yaml:"Rotate" koanf:"Rotate"`

	// Rescale is the decimation factor
	Rescale uint32 `yaml:"Rescale" koanf:"Rescale"`
}

type config struct {
	Addr        string   `yaml:"Addr" koanf:"Addr"`
	Root        string   `yaml:"Root" koanf:"Root"`
	Sensor      sensor   `yaml:"Sensor" koanf:"Sensor"`
	Pipeline    pipeline `yaml:"Pipeline" koanf:"Pipeline"`
	Recorder    recorder `yaml:"Recorder" koanf:"Recorder"`
	Retries     uint64   `yaml:"Retries" koanf:"Retries"`
	RetryWait   string   `yaml:"RetryWait" koanf:"RetryWait"`
	Lockable    bool     `yaml:"Lockable" koanf:"Lockable"`
	LogRequests bool     `yaml:"LogRequests" koanf:"LogRequests"`
}

var defaults = config{
	Addr: ":8000",
	Root: "/",
	Sensor: sensor{
		Width:  640,
		Height: 480,
		Format: pixfmt.BayerRG8.String(),
	},
	Pipeline:    pipeline{Rotate: rotrescale.None.String(), Rescale: 1},
	Retries:     3,
	RetryWait:   "50ms",
	Lockable:    true,
	LogRequests: true,
}

// loadConfig loads the defaults and then the file at fn, if it exists, into kk
func loadConfig(kk *koanf.Koanf, fn string) error {
	err := kk.Load(structs.Provider(defaults, "koanf"), nil)
	if err != nil {
		return err
	}
	if err := kk.Load(file.Provider(fn), yaml.Parser()); err != nil {
		if !errors.Is(err, fs.ErrNotExist) { // file missing, who cares
			return errors.Wrap(err, "loading config")
		}
	}
	return nil
}

func setupconfig() {
	if err := loadConfig(k, ConfigFileName); err != nil {
		log.Fatal(err)
	}
}

// toPipeline converts the config representation of a pipeline
func (p pipeline) toPipeline() (rotrescale.Pipeline, error) {
	o, err := rotrescale.ParseOrientation(p.Rotate)
	if err != nil {
		return rotrescale.Pipeline{}, err
	}
	return rotrescale.Pipeline{Rotate: o, Rescale: p.Rescale}, nil
}

func root() {
	str := `xform-http serves frames from an 8-bit camera over HTTP,
decimated and rotated on the way out.  Bayer tags follow
the rotation so clients can still demosaic the result.

Usage:
	xform-http <command>

Commands:
	run
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `xform-http is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.
The command mkconf generates the configuration file with the default values.

Sensor.Format is one of ` + strings.Join(pixfmt.Names(), ", ") + `.
Pipeline.Rotate is one of none, cw90, ccw270.  Pipeline.Rescale is an integer
decimation factor; 0 and 1 both leave the frame full size.

While the server runs, edits to the Pipeline section of the config file are
applied without a restart.  The pipeline may also be changed with
POST /pipeline {"rotate": "cw90", "rescale": 2}.

When Lockable is true, POST /lock {"bool": true} makes every other POST
return 423 until it is unlocked.`
	fmt.Println(str)
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("xform-http version %v\n", Version)
}

// watchPipeline reloads the pipeline from the config file whenever it changes
func watchPipeline(h *httpcam.HTTPCamera) {
	fp := file.Provider(ConfigFileName)
	err := fp.Watch(func(event interface{}, err error) {
		if err != nil {
			log.Printf("watching %s: %v\n", ConfigFileName, err)
			return
		}
		kk := koanf.New(".")
		if err := loadConfig(kk, ConfigFileName); err != nil {
			log.Println(err)
			return
		}
		c := config{}
		if err := kk.Unmarshal("", &c); err != nil {
			log.Println(err)
			return
		}
		p, err := c.Pipeline.toPipeline()
		if err != nil {
			log.Printf("ignoring pipeline in %s: %v\n", ConfigFileName, err)
			return
		}
		h.UsePipeline(p)
		log.Printf("pipeline reloaded: rotate=%v rescale=%d\n", p.Rotate, p.Rescale)
	})
	if err != nil {
		log.Printf("config file %s will not be watched: %v\n", ConfigFileName, err)
	}
}

func run() {
	cfg := config{}
	err := k.Unmarshal("", &cfg)
	if err != nil {
		log.Fatal(err)
	}
	pf, err := pixfmt.Parse(cfg.Sensor.Format)
	if err != nil {
		log.Fatal(err)
	}
	p, err := cfg.Pipeline.toPipeline()
	if err != nil {
		log.Fatal(err)
	}
	wait, err := time.ParseDuration(cfg.RetryWait)
	if err != nil {
		log.Fatal(err)
	}
	c, err := camera.NewMock(cfg.Sensor.Width, cfg.Sensor.Height, pf)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("simulating a %dx%d %v sensor\n", cfg.Sensor.Width, cfg.Sensor.Height, pf)

	args := cfg.Recorder
	r := &imgrec.Recorder{Root: args.Root, Prefix: args.Prefix, Enabled: args.Enabled}
	w := httpcam.NewHTTPCamera(c, r)
	w.Retries = cfg.Retries
	w.RetryWait = wait
	w.UsePipeline(p)
	if _, err := os.Stat(ConfigFileName); err == nil {
		watchPipeline(w)
	}

	// clean up the submux string
	hndlrS := generichttp.SubMuxSanitize(cfg.Root)
	root := chi.NewRouter()
	if cfg.LogRequests {
		root.Use(middleware.Logger)
	}
	mux := chi.NewRouter()
	if cfg.Lockable {
		l := locker.New()
		locker.Inject(w, l)
		mux.Use(l.Check)
	}
	root.Mount(hndlrS, mux)
	w.RT().Bind(mux)
	addr := cfg.Addr + hndlrS
	log.Println("now listening for requests at ", addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, root))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
