// Package app runs the local camera pipeline and broadcasts the classified pose of each sampled frame.
package app

import (
	"sync"
	"time"

	"github.com/ayusman/flashgesture/internal/capture"
	"github.com/ayusman/flashgesture/internal/clock"
	"github.com/ayusman/flashgesture/internal/detector"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
	"github.com/ayusman/flashgesture/internal/store"
)

// subscriberBuffer is how many observations a slow subscriber may lag behind before samples are dropped.
const subscriberBuffer = 16

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	Camera       capture.Config
	MotionThresh float64
	SampleEvery  int
	Classifier   gesture.ClassifierConfig
	Clock        clock.Clock
}

// Observation is one classified frame.
type Observation struct {
	Symbol gesture.Symbol `json:"symbol"`
	At     time.Time      `json:"at"`
}

// App owns the camera, the detector and the classifier chain.
type App struct {
	config    Config
	log       *logger.Logger
	clock     clock.Clock
	camera    capture.Camera
	motion    *capture.MotionGate
	sampler   *capture.Sampler
	detector  detector.Detector
	templates *gesture.TemplateMatcher
	chain     *gesture.Chain

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Observation
	last   Observation
}

// New creates an App. The MediaPipe detector is used when its service script is installed,
// otherwise a MockDetector that never sees a hand.
func New(config Config) *App {
	if config.Clock == nil {
		config.Clock = clock.System
	}

	geometry := gesture.NewClassifier(config.Classifier)
	templates := gesture.NewTemplateMatcher()

	a := &App{
		config:    config,
		log:       logger.Named("app"),
		clock:     config.Clock,
		camera:    capture.NewCamera(config.Camera),
		motion:    capture.NewMotionGate(config.MotionThresh),
		sampler:   capture.NewSampler(config.SampleEvery),
		templates: templates,
		chain:     gesture.NewChain(templates, geometry),
		subs:      make(map[int]chan Observation),
		last:      Observation{Symbol: gesture.None},
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		a.log.Info().Msg("using mediapipe hand detection")
	} else {
		a.log.Warn().Err(err).Msg("mediapipe not available, using mock detector")
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled turns classification of camera frames on or off.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if changed {
		a.log.Info().Bool("enabled", enabled).Msg("gesture input toggled")
	}
	if !enabled {
		a.sampler.Reset()
		a.motion.Reset()
	}
}

// IsEnabled returns whether camera frames are being classified.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector. The previous one is not closed.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Classifier returns the template-then-geometry chain used for every hand.
func (a *App) Classifier() gesture.PoseClassifier {
	return a.chain
}

// Templates returns the calibrated template matcher.
func (a *App) Templates() *gesture.TemplateMatcher {
	return a.templates
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	a.log.Info().Msg("capture pipeline started")
	return nil
}

// Stop halts the capture loop and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	if err := a.Camera().Close(); err != nil {
		a.log.Warn().Err(err).Msg("close camera")
	}
	a.motion.Close()
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			a.log.Warn().Err(err).Msg("close detector")
		}
	}
	a.closeSubscribers()

	a.log.Info().Msg("capture pipeline stopped")
}

// Subscribe returns a channel of observations and a func that cancels the subscription.
// Observations are dropped for a subscriber whose buffer is full.
func (a *App) Subscribe() (<-chan Observation, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextID
	a.nextID++
	ch := make(chan Observation, subscriberBuffer)
	a.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.subMu.Lock()
			defer a.subMu.Unlock()
			if c, ok := a.subs[id]; ok {
				delete(a.subs, id)
				close(c)
			}
		})
	}
}

// Last returns the most recent observation.
func (a *App) Last() Observation {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	return a.last
}

// Publish sends obs to every subscriber.
func (a *App) Publish(obs Observation) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	a.last = obs
	for id, ch := range a.subs {
		select {
		case ch <- obs:
		default:
			a.log.Debug().Int("subscriber", id).Msg("observation dropped")
		}
	}
}

func (a *App) closeSubscribers() {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	for id, ch := range a.subs {
		delete(a.subs, id)
		close(ch)
	}
}
