package capture

import (
	"sync"
	"time"
)

// Pacing constants for the capture loop.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand may be moving.
	ActiveFPS = 15
	// IdleAfter is how long without motion before dropping back to IdleFPS.
	IdleAfter = 2 * time.Second
)

// Sampler decides which frames reach the detector. Motion switches it to the active rate;
// in active mode only every Nth frame is passed on.
type Sampler struct {
	mu         sync.Mutex
	every      int
	count      int
	active     bool
	lastMotion time.Time
}

// NewSampler passes every nth active frame. n below 1 means every frame.
func NewSampler(n int) *Sampler {
	if n < 1 {
		n = 1
	}
	return &Sampler{every: n}
}

// Decision is the outcome of Sampler.Next.
type Decision struct {
	// Sample is true when the frame should be classified.
	Sample bool
	// FPS is set when the capture rate should change.
	FPS int
}

// Next records whether motion was seen at now and returns what to do with the frame.
func (s *Sampler) Next(motion bool, now time.Time) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d Decision
	if motion {
		s.lastMotion = now
		if !s.active {
			s.active = true
			s.count = 0
			d.FPS = ActiveFPS
		}
	} else if s.active && now.Sub(s.lastMotion) > IdleAfter {
		s.active = false
		d.FPS = IdleFPS
	}

	if !s.active {
		return d
	}

	s.count++
	if s.count >= s.every {
		s.count = 0
		d.Sample = true
	}
	return d
}

// Active reports whether the sampler is in active mode.
func (s *Sampler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Reset returns to idle mode.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.count = 0
}
