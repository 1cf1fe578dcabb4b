package clock

import "time"

// Clock abstracts time.Now so services that bucket rows by day or month can be
// exercised against a fixed instant in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
