package window

import (
	"log"

	"github.com/veandco/go-sdl2/sdl"

	"hexil/lifecycle"
)

const (
	// frameTickMs is how long the loop waits for events before asking for the next frame.
	frameTickMs = 16
	paletteSize = 8
)

// Translator maps SDL events to render commands.
type Translator struct {
	// DrawableSize reports the window size in physical pixels.
	DrawableSize func() (uint32, uint32)
	Editor       *Editor
}

// Translate returns the commands event maps to and whether the event loop has to stop after sending them.
func (t *Translator) Translate(event sdl.Event) (cmds []lifecycle.RenderCommand, quit bool) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		log.Printf("Closing window!")
		return []lifecycle.RenderCommand{lifecycle.Shutdown{}}, true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_SIZE_CHANGED, sdl.WINDOWEVENT_RESTORED:
			w, h := t.DrawableSize()
			return []lifecycle.RenderCommand{lifecycle.WindowResized{Width: w, Height: h}}, false
		case sdl.WINDOWEVENT_MINIMIZED:
			return []lifecycle.RenderCommand{lifecycle.WindowResized{}}, false
		case sdl.WINDOWEVENT_EXPOSED:
			return []lifecycle.RenderCommand{lifecycle.Redraw{}}, false
		case sdl.WINDOWEVENT_CLOSE:
			log.Printf("Closing window!")
			return []lifecycle.RenderCommand{lifecycle.Shutdown{}}, true
		}
	case *sdl.KeyboardEvent:
		if ev.Type != sdl.KEYDOWN {
			return nil, false
		}
		return t.key(ev.Keysym.Sym)
	}
	return nil, false
}

func (t *Translator) key(sym sdl.Keycode) ([]lifecycle.RenderCommand, bool) {
	if sym == sdl.K_ESCAPE {
		log.Printf("Closing window!")
		return []lifecycle.RenderCommand{lifecycle.Shutdown{}}, true
	}
	if t.Editor == nil {
		return nil, false
	}

	var cmd lifecycle.RenderCommand
	var err error
	switch sym {
	case sdl.K_g:
		cmd, err = t.Editor.ToggleGrid()
	case sdl.K_RIGHT:
		cmd, err = t.Editor.ResizeBy(1, 0)
	case sdl.K_LEFT:
		cmd, err = t.Editor.ResizeBy(-1, 0)
	case sdl.K_DOWN:
		cmd, err = t.Editor.ResizeBy(0, 1)
	case sdl.K_UP:
		cmd, err = t.Editor.ResizeBy(0, -1)
	case sdl.K_c:
		cmd, err = t.Editor.Clear()
	case sdl.K_n:
		cmd, err = t.Editor.FillPattern(paletteSize)
	default:
		return nil, false
	}
	if err != nil {
		log.Printf("WARN Canvas edit rejected: %v", err)
		return nil, false
	}
	return []lifecycle.RenderCommand{cmd}, false
}

// Run is the main thread event loop. It announces the initial drawable size, then translates events and asks for
// a frame every tick until the window closes or the renderer dies. show is called once ready is closed. Run must be
// called from the thread that initialized SDL.
func Run(t *Translator, s *Sender, ready <-chan struct{}, show func()) {
	w, h := t.DrawableSize()
	if !s.Send(lifecycle.WindowResized{Width: w, Height: h}) {
		return
	}
	shown := false
	for {
		event := sdl.WaitEventTimeout(frameTickMs)
		for ; event != nil; event = sdl.PollEvent() {
			cmds, quit := t.Translate(event)
			for _, cmd := range cmds {
				if !s.Send(cmd) {
					return
				}
			}
			if quit {
				return
			}
		}
		if !shown {
			select {
			case <-ready:
				show()
				shown = true
			default:
			}
		}
		if !s.Redraw() {
			return
		}
	}
}
