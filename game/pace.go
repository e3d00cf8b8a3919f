package game

import "time"

// Pace schedules the tick interval as the score climbs.
type Pace struct {
	Base time.Duration
	// Step is removed from the interval every Every points. Zero disables speed-ups.
	Step  time.Duration
	Every int
	Min   time.Duration
}

// DefaultPace ticks four times a second and never speeds up.
func DefaultPace() Pace {
	return Pace{Base: 250 * time.Millisecond, Min: 250 * time.Millisecond}
}

func (p Pace) Interval(score int) time.Duration {
	if p.Every <= 0 || p.Step <= 0 || score <= 0 {
		return p.Base
	}
	d := p.Base - time.Duration(score/p.Every)*p.Step
	if d < p.Min {
		return p.Min
	}
	return d
}
