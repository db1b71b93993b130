package session

import "time"

// Clock is the injectable time source used for expiry and touch ordering.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock backed Clock.
func SystemClock() Clock { return systemClock{} }
