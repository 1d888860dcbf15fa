package config

import (
	"testing"

	"hexil/model"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(nil, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults %+v, got %+v", Default(), cfg)
	}
	size := cfg.CanvasSize()
	if size.Width != 20 || size.Height != 15 {
		t.Errorf("Expected a 20x15 canvas, got %s", size)
	}
	if cfg.Grid != model.GridSquare || !cfg.Validation || cfg.VSync {
		t.Errorf("Unexpected default switches: %+v", cfg)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	cfg, err := Load(nil, env(map[string]string{
		"HEXIL_TITLE":         "Sketch",
		"HEXIL_CANVAS_WIDTH":  "32",
		"HEXIL_GRID":          "hex",
		"HEXIL_VALIDATION":    "false",
		"HEXIL_VSYNC":         "1",
		"HEXIL_LOG_FILE":      "",
		"HEXIL_WINDOW_HEIGHT": "600",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Title != "Sketch" || cfg.CanvasWidth != 32 || cfg.WindowHeight != 600 {
		t.Errorf("Environment not applied: %+v", cfg)
	}
	if cfg.Grid != model.GridHexagonal || cfg.Validation || !cfg.VSync || cfg.LogFile != "" {
		t.Errorf("Environment switches not applied: %+v", cfg)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, err := Load(
		[]string{"-canvas-width", "8", "-grid", "square", "-vsync=false"},
		env(map[string]string{"HEXIL_CANVAS_WIDTH": "32", "HEXIL_GRID": "hexagonal", "HEXIL_VSYNC": "true"}),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.CanvasWidth != 8 || cfg.Grid != model.GridSquare || cfg.VSync {
		t.Errorf("Flags did not win over the environment: %+v", cfg)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad number", nil, map[string]string{"HEXIL_CANVAS_HEIGHT": "many"}},
		{"bad bool", nil, map[string]string{"HEXIL_VALIDATION": "maybe"}},
		{"bad grid env", nil, map[string]string{"HEXIL_GRID": "triangle"}},
		{"bad grid flag", []string{"-grid", "triangle"}, nil},
		{"zero window", []string{"-width", "0"}, nil},
		{"wrapping width", []string{"-width", "4294967297"}, nil},
		{"wrapping height", []string{"-height", "2147483648"}, nil},
		{"wrapping negative width", []string{"-width", "-4294967295"}, nil},
		{"wrapping canvas", []string{"-canvas-width", "4294967297"}, nil},
		{"no shader", []string{"-vert", ""}, nil},
		{"unknown flag", []string{"-nope"}, nil},
	}
	for _, c := range cases {
		if _, err := Load(c.args, env(c.env)); err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}
