package ligature

import (
	"math"
	"time"
)

// Timing converts between grid steps and wall clock time. BPM counts beats of
// the time signature unit and there are Grid steps in one beat.
type Timing struct {
	BPM     float64
	Grid    int
	TimeSig TimeSig
}

// Timing returns the timing of the config.
func (c TrackConfig) Timing() Timing {
	return Timing{BPM: c.BPM, Grid: c.Grid, TimeSig: c.TimeSig}
}

func (t Timing) valid() bool {
	return t.BPM > 0 && t.Grid > 0
}

// StepsPerSecond returns how many grid steps elapse in one second.
func (t Timing) StepsPerSecond() float64 {
	if !t.valid() {
		return 0
	}
	return t.BPM / 60 * float64(t.Grid)
}

// StepDuration returns the duration of one grid step.
func (t Timing) StepDuration() time.Duration {
	return t.StepsToDuration(1)
}

// StepsToDuration returns the wall clock duration of a (possibly fractional)
// number of steps.
func (t Timing) StepsToDuration(steps float64) time.Duration {
	sps := t.StepsPerSecond()
	if sps == 0 {
		return 0
	}
	return time.Duration(steps / sps * float64(time.Second))
}

// DurationToStep returns the index of the step being played after d has
// elapsed: floor(elapsed seconds × bpm/60 × grid).
func (t Timing) DurationToStep(d time.Duration) int {
	return int(math.Floor(d.Seconds() * t.StepsPerSecond()))
}

// StepsPerBar returns the number of grid steps in one bar.
func (t Timing) StepsPerBar() int {
	return t.TimeSig.BeatsPerBar * t.Grid
}
