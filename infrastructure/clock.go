package infrastructure

import "time"

// SystemClock is the production Clock backed by the wall clock
type SystemClock struct{}

// NewSystemClock creates a new system clock
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
