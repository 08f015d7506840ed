package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/flashgesture/internal/capture"
	"github.com/ayusman/flashgesture/internal/detector"
	"github.com/ayusman/flashgesture/internal/gesture"
)

// run reads frames until stopCh closes. Frames are read at IdleFPS until motion shows up,
// then at ActiveFPS until IdleAfter passes without motion.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / capture.IdleFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				a.log.Debug().Err(err).Msg("read frame")
				continue
			}

			fps, _ := a.processFrame(frame, a.clock.Now())
			frame.Close()

			if fps > 0 {
				a.Camera().SetFPS(fps)
				ticker.Reset(time.Second / time.Duration(fps))
				a.log.Debug().Int("fps", fps).Msg("capture rate changed")
			}
		}
	}
}

// processFrame runs one frame through the motion gate, the sampler and, when sampled,
// the detector and classifier. It returns a new capture rate (0 for unchanged) and
// whether an observation was published.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) (int, bool) {
	moved, _ := a.motion.Detect(frame)
	decision := a.sampler.Next(moved, now)
	if !decision.Sample {
		return decision.FPS, false
	}

	d := a.Detector()
	if d == nil {
		return decision.FPS, false
	}

	hands, err := d.Detect(frame)
	if err != nil {
		a.log.Warn().Err(err).Msg("detect hands")
		return decision.FPS, false
	}

	a.Publish(a.Observe(detector.Primary(hands), now))
	return decision.FPS, true
}

// Observe classifies hand, which may be nil when no hand was found.
func (a *App) Observe(hand *detector.HandLandmarks, at time.Time) Observation {
	symbol := gesture.None
	if hand != nil {
		symbol = a.chain.Classify(hand)
	}
	return Observation{Symbol: symbol, At: at}
}
