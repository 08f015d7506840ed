// Package tray provides the system tray menu: a gesture input switch and the last rating given.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/flashgesture/internal/gesture"
	"github.com/ayusman/flashgesture/internal/logger"
)

const (
	titleOn  = "● Gestures on"
	titleOff = "○ Gestures off"
)

// Tray is the system tray menu.
type Tray struct {
	mu         sync.RWMutex
	onToggle   func(enabled bool)
	onOpen     func()
	onQuit     func()
	enabled    bool
	lastRating gesture.Rating

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray with gesture input set to enabled.
func New(enabled bool) *Tray {
	return &Tray{
		enabled:    enabled,
		lastRating: gesture.RatingNone,
	}
}

// OnToggle sets the callback run when gesture input is switched.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run by "Open Flashcards...".
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray and blocks until Quit. It must be called from the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Flashgesture")
	systray.SetTooltip("Rate flashcards with thumb gestures")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Switch camera gesture input")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem(lastTitle(t.lastRating), "Last rating confirmed by gesture")
	t.menuLast.Disable()
	t.mu.Unlock()

	systray.AddSeparator()
	menuOpen := systray.AddMenuItem("Open Flashcards...", "Open the flashcard page in the browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Flashgesture")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	logger.Named("tray").Debug().Msg("tray closed")
}

// Toggle flips gesture input and runs the toggle callback.
func (t *Tray) Toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	logger.Named("tray").Info().Bool("enabled", enabled).Msg("gesture input toggled")
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetLastRating shows the most recent confirmed rating.
func (t *Tray) SetLastRating(r gesture.Rating) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastRating = r
	if t.menuLast != nil {
		t.menuLast.SetTitle(lastTitle(r))
	}
}

// LastRating returns the rating shown in the menu.
func (t *Tray) LastRating() gesture.Rating {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastRating
}

// IsEnabled returns the current switch position.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleOn
	}
	return titleOff
}

func lastTitle(r gesture.Rating) string {
	if !r.Valid() {
		return "Last: none"
	}
	return "Last: " + string(r)
}
