package lifecycle

import (
	"log"
	"time"

	"github.com/loov/hrtime"
)

type frameStats struct {
	frames  uint64
	dropped uint64
	total   time.Duration
	worst   time.Duration
}

func (s *frameStats) start() time.Duration {
	return hrtime.Now()
}

func (s *frameStats) done(start time.Duration) {
	d := hrtime.Since(start)
	s.frames++
	s.total += d
	if d > s.worst {
		s.worst = d
	}
}

func (s *frameStats) drop() {
	s.dropped++
}

func (s *frameStats) average() time.Duration {
	if s.frames == 0 {
		return 0
	}
	return s.total / time.Duration(s.frames)
}

func (s *frameStats) log() {
	log.Printf("Presented %d frames (%d dropped), average frame time %v, worst %v",
		s.frames, s.dropped, s.average(), s.worst)
}
