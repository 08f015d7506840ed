// Package confirm turns a noisy stream of gesture symbols into at most one rating per
// activation window. A confirmable symbol has to be held unchanged for HoldDuration;
// OverallTimeout after activation the engine flags inactivity unless a rating was confirmed.
package confirm

import (
	"sync"
	"time"

	"github.com/ayusman/flashgesture/internal/clock"
	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
)

// State is the engine's position in an activation window.
type State string

const (
	StateIdle      State = "idle"
	StateArmed     State = "armed"
	StateHolding   State = "holding"
	StateConfirmed State = "confirmed"
)

// Config holds the two engine durations.
type Config struct {
	// HoldDuration is how long one confirmable symbol must be observed without change.
	HoldDuration time.Duration

	// OverallTimeout is how long after activation inactivity is flagged.
	OverallTimeout time.Duration
}

// DefaultConfig returns the standard durations.
func DefaultConfig() Config {
	return Config{
		HoldDuration:   1500 * time.Millisecond,
		OverallTimeout: 8000 * time.Millisecond,
	}
}

// Snapshot is a read-only view of the engine for UI feedback.
type Snapshot struct {
	State        State          `json:"state"`
	Symbol       gesture.Symbol `json:"symbol"`
	TrackedSince time.Time      `json:"trackedSince,omitempty"`
	Confirmed    gesture.Rating `json:"confirmed"`
	Inactive     bool           `json:"inactive"`
	// Window counts activations; 0 before the first one.
	Window uint64 `json:"window"`
	// Seq increases with every change, so a receiver can discard snapshots that arrive late.
	Seq uint64 `json:"seq"`
}

// Engine is the hold-to-confirm state machine. It is safe for concurrent use: samples,
// activation changes and timer fires are serialized by one mutex. Callbacks run after the
// mutex is released and may call back into the engine.
type Engine struct {
	mu     sync.Mutex
	config Config
	clock  clock.Clock
	log    *logger.Logger

	state     State
	symbol    gesture.Symbol // "" when nothing is tracked
	since     time.Time
	confirmed gesture.Rating
	inactive  bool
	window    uint64
	seq       uint64

	hold        clock.Timer
	holdGen     uint64
	deadline    clock.Timer
	deadlineGen uint64

	onConfirm  func(Snapshot)
	onInactive func()
	onChange   func(Snapshot)
}

// New creates an idle engine on the system clock.
func New(config Config) *Engine {
	return NewWithClock(config, clock.System)
}

// NewWithClock creates an idle engine driven by clk. Non-positive durations take defaults.
func NewWithClock(config Config, clk clock.Clock) *Engine {
	def := DefaultConfig()
	if config.HoldDuration <= 0 {
		config.HoldDuration = def.HoldDuration
	}
	if config.OverallTimeout <= 0 {
		config.OverallTimeout = def.OverallTimeout
	}
	return &Engine{
		config:    config,
		clock:     clk,
		log:       logger.Named("confirm"),
		state:     StateIdle,
		confirmed: gesture.RatingNone,
	}
}

// Config returns the durations in use.
func (e *Engine) Config() Config {
	return e.config
}

// OnConfirm sets the callback invoked once per window with the confirmed rating.
func (e *Engine) OnConfirm(fn func(gesture.Rating)) {
	if fn == nil {
		e.OnConfirmed(nil)
		return
	}
	e.OnConfirmed(func(s Snapshot) { fn(s.Confirmed) })
}

// OnConfirmed is OnConfirm with the snapshot taken at confirmation, which names the window.
func (e *Engine) OnConfirmed(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onConfirm = fn
}

// OnInactive sets the callback invoked when the window times out without a rating.
func (e *Engine) OnInactive(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onInactive = fn
}

// OnChange sets the callback invoked with a fresh snapshot after every visible change.
func (e *Engine) OnChange(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// Activate opens a new window and returns its number. Any previous window is discarded
// along with its timers.
func (e *Engine) Activate() uint64 {
	e.mu.Lock()
	e.cancelHold()
	e.cancelDeadline()

	e.window++
	window := e.window
	e.state = StateArmed
	e.symbol = ""
	e.since = time.Time{}
	e.confirmed = gesture.RatingNone
	e.inactive = false

	gen := e.deadlineGen
	e.deadline = e.clock.AfterFunc(e.config.OverallTimeout, func() { e.deadlineFired(gen) })

	e.log.Debug().Uint64("window", window).Dur("timeout", e.config.OverallTimeout).Msg("activated")
	e.unlockAndNotify(nil)
	return window
}

// Deactivate closes the window. No callback other than OnChange fires.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	if e.state == StateIdle {
		e.mu.Unlock()
		return
	}
	e.cancelHold()
	e.cancelDeadline()
	e.state = StateIdle
	e.symbol = ""
	e.since = time.Time{}

	e.log.Debug().Msg("deactivated")
	e.unlockAndNotify(nil)
}

// Active reports whether a window is open.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state != StateIdle
}

// Observe feeds one classified sample. Unknown symbols count as gesture.None.
// Samples are ignored while idle; after confirmation they only update the live symbol.
func (e *Engine) Observe(s gesture.Symbol) {
	if !s.Valid() {
		s = gesture.None
	}

	e.mu.Lock()
	if e.state == StateIdle || s == e.symbol {
		e.mu.Unlock()
		return
	}

	e.symbol = s
	e.since = e.clock.Now()

	if e.state == StateConfirmed {
		e.unlockAndNotify(nil)
		return
	}

	e.confirmed = gesture.RatingNone
	e.cancelHold()

	if s.Confirmable() {
		gen := e.holdGen
		e.hold = e.clock.AfterFunc(e.config.HoldDuration, func() { e.holdFired(gen) })
		e.state = StateHolding
	} else {
		e.state = StateArmed
	}

	e.log.Debug().Str("symbol", string(s)).Str("state", string(e.state)).Msg("tracking")
	e.unlockAndNotify(nil)
}

// Snapshot returns the current view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Engine) snapshot() Snapshot {
	sym := e.symbol
	if sym == "" {
		sym = gesture.None
	}
	return Snapshot{
		State:        e.state,
		Symbol:       sym,
		TrackedSince: e.since,
		Confirmed:    e.confirmed,
		Inactive:     e.inactive,
		Window:       e.window,
		Seq:          e.seq,
	}
}

func (e *Engine) holdFired(gen uint64) {
	e.mu.Lock()
	if gen != e.holdGen || e.state != StateHolding {
		e.mu.Unlock()
		e.log.Debug().Msg("stale hold timer ignored")
		return
	}
	e.hold = nil

	rating := gesture.RatingFor(e.symbol)
	if rating == gesture.RatingNone {
		e.state = StateArmed
		e.mu.Unlock()
		return
	}

	e.confirmed = rating
	e.state = StateConfirmed
	e.cancelDeadline()

	e.log.Info().Str("rating", string(rating)).Str("symbol", string(e.symbol)).Msg("confirmed")

	onConfirm := e.onConfirm
	e.unlockAndNotify(func(snap Snapshot) {
		if onConfirm != nil {
			onConfirm(snap)
		}
	})
}

func (e *Engine) deadlineFired(gen uint64) {
	e.mu.Lock()
	if gen != e.deadlineGen || e.state == StateIdle || e.state == StateConfirmed {
		e.mu.Unlock()
		return
	}
	e.deadline = nil
	e.inactive = true

	e.log.Info().Dur("timeout", e.config.OverallTimeout).Msg("no rating confirmed")

	onInactive := e.onInactive
	e.unlockAndNotify(func(Snapshot) {
		if onInactive != nil {
			onInactive()
		}
	})
}

// unlockAndNotify numbers the change, releases the mutex, then runs first and the change
// callback with the same snapshot.
func (e *Engine) unlockAndNotify(first func(Snapshot)) {
	e.seq++
	snap := e.snapshot()
	onChange := e.onChange
	e.mu.Unlock()

	if first != nil {
		first(snap)
	}
	if onChange != nil {
		onChange(snap)
	}
}

func (e *Engine) cancelHold() {
	e.holdGen++
	if e.hold != nil {
		e.hold.Stop()
		e.hold = nil
	}
}

func (e *Engine) cancelDeadline() {
	e.deadlineGen++
	if e.deadline != nil {
		e.deadline.Stop()
		e.deadline = nil
	}
}
