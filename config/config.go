// Package config holds the runtime configuration of hexil. Defaults can be overridden by HEXIL_* environment
// variables, which in turn are overridden by command line flags.
package config

import (
	"flag"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"hexil/model"
)

type Config struct {
	Title        string
	WindowWidth  int32
	WindowHeight int32

	CanvasWidth  uint32
	CanvasHeight uint32
	Grid         model.GridType

	Validation     bool
	VSync          bool
	VertexShader   string
	FragmentShader string

	LogFile       string
	LogMaxBackups int
}

func Default() Config {
	return Config{
		Title:          "Hexil",
		WindowWidth:    1280,
		WindowHeight:   720,
		CanvasWidth:    20,
		CanvasHeight:   15,
		Grid:           model.GridSquare,
		Validation:     true,
		VSync:          false,
		VertexShader:   "shaders/tile.vert.spv",
		FragmentShader: "shaders/tile.frag.spv",
		LogFile:        "logs/hexil.log",
		LogMaxBackups:  20,
	}
}

// CanvasSize is the initial canvas size.
func (c Config) CanvasSize() model.CanvasSize {
	return model.CanvasSize{Width: c.CanvasWidth, Height: c.CanvasHeight}
}

// Load builds the configuration from the defaults, the environment (through lookup) and args.
func Load(args []string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("hexil", flag.ContinueOnError)
	fs.StringVar(&cfg.Title, "title", cfg.Title, "Window title")
	width := fs.Int64("width", int64(cfg.WindowWidth), "Initial window width")
	height := fs.Int64("height", int64(cfg.WindowHeight), "Initial window height")
	canvasW := fs.Uint64("canvas-width", uint64(cfg.CanvasWidth), "Canvas width in cells")
	canvasH := fs.Uint64("canvas-height", uint64(cfg.CanvasHeight), "Canvas height in cells")
	grid := fs.String("grid", cfg.Grid.String(), "Grid type, square or hexagonal")
	fs.BoolVar(&cfg.Validation, "validation", cfg.Validation, "Enable the Vulkan validation layers")
	fs.BoolVar(&cfg.VSync, "vsync", cfg.VSync, "Always present in FIFO mode")
	fs.StringVar(&cfg.VertexShader, "vert", cfg.VertexShader, "Vertex shader SPIR-V")
	fs.StringVar(&cfg.FragmentShader, "frag", cfg.FragmentShader, "Fragment shader SPIR-V")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Log file, empty logs to stdout only")
	fs.IntVar(&cfg.LogMaxBackups, "log-backups", cfg.LogMaxBackups, "Rotated log files to keep")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	// range checked before narrowing
	if *width < math.MinInt32 || *width > math.MaxInt32 || *height < math.MinInt32 || *height > math.MaxInt32 {
		return cfg, errors.Errorf("window size %dx%d is out of range", *width, *height)
	}
	if *canvasW > math.MaxUint32 || *canvasH > math.MaxUint32 {
		return cfg, errors.Errorf("canvas size %dx%d is out of range", *canvasW, *canvasH)
	}
	cfg.WindowWidth = int32(*width)
	cfg.WindowHeight = int32(*height)
	cfg.CanvasWidth = uint32(*canvasW)
	cfg.CanvasHeight = uint32(*canvasH)
	g, err := model.ParseGridType(*grid)
	if err != nil {
		return cfg, err
	}
	cfg.Grid = g
	return cfg, cfg.validate()
}

// FromOS loads the configuration from os.Args and the process environment.
func FromOS() (Config, error) {
	return Load(os.Args[1:], os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, bits int, set func(uint64)) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		n, perr := strconv.ParseUint(strings.TrimSpace(v), 10, bits)
		if perr != nil {
			err = errors.Wrapf(perr, "invalid %s", key)
			return
		}
		set(n)
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || err != nil {
			return
		}
		b, perr := strconv.ParseBool(strings.TrimSpace(v))
		if perr != nil {
			err = errors.Wrapf(perr, "invalid %s", key)
			return
		}
		*dst = b
	}

	str("HEXIL_TITLE", &c.Title)
	num("HEXIL_WINDOW_WIDTH", 31, func(n uint64) { c.WindowWidth = int32(n) })
	num("HEXIL_WINDOW_HEIGHT", 31, func(n uint64) { c.WindowHeight = int32(n) })
	num("HEXIL_CANVAS_WIDTH", 32, func(n uint64) { c.CanvasWidth = uint32(n) })
	num("HEXIL_CANVAS_HEIGHT", 32, func(n uint64) { c.CanvasHeight = uint32(n) })
	if v, ok := lookup("HEXIL_GRID"); ok && err == nil {
		c.Grid, err = model.ParseGridType(v)
	}
	boolean("HEXIL_VALIDATION", &c.Validation)
	boolean("HEXIL_VSYNC", &c.VSync)
	str("HEXIL_VERTEX_SHADER", &c.VertexShader)
	str("HEXIL_FRAGMENT_SHADER", &c.FragmentShader)
	str("HEXIL_LOG_FILE", &c.LogFile)
	num("HEXIL_LOG_MAX_BACKUPS", 31, func(n uint64) { c.LogMaxBackups = int(n) })
	return err
}

func (c Config) validate() error {
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return errors.Errorf("window size %dx%d is not positive", c.WindowWidth, c.WindowHeight)
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("both shader paths are required")
	}
	if c.LogMaxBackups < 0 {
		return errors.Errorf("log backups %d is negative", c.LogMaxBackups)
	}
	return nil
}
