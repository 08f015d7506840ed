// Package clock abstracts wall time and delayed callbacks so timer-driven code can be tested.
package clock

import (
	"time"

	"github.com/dropbox/godropbox/time2"
)

// Timer is a pending delayed callback. Stop is safe to call more than once.
type Timer interface {
	Stop() bool
}

// Clock is a time2.Clock that can also schedule callbacks.
type Clock interface {
	time2.Clock
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct {
	time2.Clock
}

// System is the real clock.
var System Clock = systemClock{Clock: time2.DefaultClock}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
