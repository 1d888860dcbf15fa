// Package window runs the SDL event loop on the main thread and turns window events and editing keys into render
// commands for the render goroutine.
package window

import (
	"log"

	"hexil/lifecycle"
)

// Sender delivers commands to the render goroutine. Once the renderer is gone (dead is closed) every send fails and
// the event loop is expected to exit.
type Sender struct {
	out  chan<- lifecycle.RenderCommand
	dead <-chan struct{}
}

func NewSender(out chan<- lifecycle.RenderCommand, dead <-chan struct{}) *Sender {
	return &Sender{out: out, dead: dead}
}

// Send blocks until cmd is queued. It returns false if the renderer died before taking it.
func (s *Sender) Send(cmd lifecycle.RenderCommand) bool {
	select {
	case <-s.dead:
		return s.died(cmd)
	default:
	}
	select {
	case s.out <- cmd:
		return true
	case <-s.dead:
		return s.died(cmd)
	}
}

// Redraw queues a Redraw unless commands are still waiting, which keeps at most one redraw outstanding. Skipping
// is not a failure.
func (s *Sender) Redraw() bool {
	select {
	case <-s.dead:
		return s.died(lifecycle.Redraw{})
	default:
	}
	if len(s.out) > 0 {
		return true
	}
	select {
	case s.out <- lifecycle.Redraw{}:
	default:
	}
	return true
}

func (s *Sender) died(cmd lifecycle.RenderCommand) bool {
	log.Printf("ERROR Renderer has died! Last command: %v", cmd)
	return false
}
