package window

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"hexil/lifecycle"
	"hexil/model"
)

func newTranslator(t *testing.T, size model.CanvasSize) (*Translator, *lifecycle.CanvasBuffers) {
	t.Helper()
	canvas, err := model.NewCanvas(size, model.GridSquare)
	if err != nil {
		t.Fatalf("NewCanvas failed: %v", err)
	}
	buffers := lifecycle.NewCanvasBuffers(canvas)
	return &Translator{
		DrawableSize: func() (uint32, uint32) { return 1600, 900 },
		Editor:       NewEditor(buffers),
	}, buffers
}

func keyDown(sym sdl.Keycode) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sym}}
}

func TestWindowEvents(t *testing.T) {
	tr, _ := newTranslator(t, model.CanvasSize{Width: 4, Height: 4})
	cases := []struct {
		name  string
		event sdl.Event
		want  lifecycle.RenderCommand
		quit  bool
	}{
		{"quit", &sdl.QuitEvent{}, lifecycle.Shutdown{}, true},
		{"close", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_CLOSE}, lifecycle.Shutdown{}, true},
		{"escape", keyDown(sdl.K_ESCAPE), lifecycle.Shutdown{}, true},
		{"resize", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED}, lifecycle.WindowResized{Width: 1600, Height: 900}, false},
		{"minimize", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED}, lifecycle.WindowResized{}, false},
		{"expose", &sdl.WindowEvent{Event: sdl.WINDOWEVENT_EXPOSED}, lifecycle.Redraw{}, false},
	}
	for _, c := range cases {
		cmds, quit := tr.Translate(c.event)
		if len(cmds) != 1 || cmds[0] != c.want {
			t.Errorf("%s: expected [%v], got %v", c.name, c.want, cmds)
		}
		if quit != c.quit {
			t.Errorf("%s: expected quit=%v", c.name, c.quit)
		}
	}

	if cmds, quit := tr.Translate(&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Sym: sdl.K_g}}); cmds != nil || quit {
		t.Errorf("Expected key up to be ignored, got %v", cmds)
	}
}

func TestToggleGridKey(t *testing.T) {
	tr, buffers := newTranslator(t, model.CanvasSize{Width: 4, Height: 4})
	cmds, _ := tr.Translate(keyDown(sdl.K_g))
	if len(cmds) != 1 || cmds[0] != (lifecycle.CanvasSettingsChanged{}) {
		t.Fatalf("Expected CanvasSettingsChanged, got %v", cmds)
	}
	if g := buffers.Canvas().Grid; g != model.GridHexagonal {
		t.Errorf("Expected hexagonal grid, got %s", g)
	}
	tr.Translate(keyDown(sdl.K_g))
	if g := buffers.Canvas().Grid; g != model.GridSquare {
		t.Errorf("Expected square grid again, got %s", g)
	}
}

func TestResizeKeys(t *testing.T) {
	tr, buffers := newTranslator(t, model.CanvasSize{Width: 1, Height: 2})
	tr.Translate(keyDown(sdl.K_RIGHT))
	tr.Translate(keyDown(sdl.K_DOWN))
	if s := buffers.Canvas().Size; s != (model.CanvasSize{Width: 2, Height: 3}) {
		t.Errorf("Expected 2x3, got %s", s)
	}
	tr.Translate(keyDown(sdl.K_LEFT))
	tr.Translate(keyDown(sdl.K_LEFT))
	if s := buffers.Canvas().Size; s.Width != 1 {
		t.Errorf("Expected the width to stay at one cell, got %s", s)
	}
}

func TestResizeBeyondMaxCellsIsRejected(t *testing.T) {
	tr, buffers := newTranslator(t, model.CanvasSize{Width: 128, Height: 128})
	cmds, quit := tr.Translate(keyDown(sdl.K_RIGHT))
	if cmds != nil || quit {
		t.Errorf("Expected the oversized canvas to be rejected, got %v", cmds)
	}
	if s := buffers.Canvas().Size; s != (model.CanvasSize{Width: 128, Height: 128}) {
		t.Errorf("Expected the canvas to be unchanged, got %s", s)
	}
}

func TestPatternAndClear(t *testing.T) {
	tr, buffers := newTranslator(t, model.CanvasSize{Width: 3, Height: 2})
	cmds, _ := tr.Translate(keyDown(sdl.K_n))
	if len(cmds) != 1 || cmds[0] != (lifecycle.CanvasIndicesChanged{}) {
		t.Fatalf("Expected CanvasIndicesChanged, got %v", cmds)
	}
	c := buffers.Canvas()
	if v, _ := c.Cell(2, 1); v != 3 {
		t.Errorf("Expected index 3 at (2,1), got %d", v)
	}

	tr.Translate(keyDown(sdl.K_c))
	for i, v := range buffers.Canvas().Indices {
		if v != 0 {
			t.Errorf("Expected cell %d cleared, got %d", i, v)
		}
	}
}
