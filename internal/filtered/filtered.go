// Package filtered smooths streams of timestamped values over a
// configurable time window. Undefined samples and out-of-order
// timestamps are tolerated without corrupting the aggregate.
package filtered

import (
	"math"
	"time"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"codeberg.org/nmarks/creditctl/internal/value"
)

// Filtered is an exponential-decay aggregate of observed values. A new
// sample after Δt is blended with weight 1 - exp(-Δt/window), so the
// influence of old samples fades continuously rather than dropping out
// at a window edge. Memory use is constant.
//
// An unrefreshed aggregate decays toward the zero baseline when
// queried, so a stale Filtered reads as "nothing left" rather than
// holding its last estimate forever.
type Filtered struct {
	window  time.Duration
	acc     float64
	defined bool
	last    time.Time
}

// New creates a Filtered with the given decay window.
func New(window time.Duration) (*Filtered, error) {
	if window <= 0 {
		return nil, errors.New().WithData(ErrInvalidWindow, window)
	}
	return &Filtered{window: window}, nil
}

// Observe records a sample at the given time. Undefined samples carry
// no new information: the existing aggregate decays forward in time
// without being pulled toward the invalid value. Observations with a
// non-increasing timestamp are ignored, preserving the monotonic-time
// invariant.
func (f *Filtered) Observe(now time.Time, sample value.Value) {
	if !f.defined {
		if !sample.Defined() {
			return
		}
		f.acc = sample.Float()
		f.last = now
		f.defined = true
		return
	}

	dt := now.Sub(f.last)
	if dt <= 0 {
		return
	}

	decay := math.Exp(-dt.Seconds() / f.window.Seconds())
	if sample.Defined() {
		f.acc = f.acc*decay + sample.Float()*(1-decay)
	} else {
		f.acc *= decay
	}
	f.last = now
}

// Current returns the aggregate as of the given time, decayed for the
// span since the last observation. It never mutates state, so repeated
// queries at the same time return the same value. Before the first
// valid observation the aggregate is undefined.
func (f *Filtered) Current(now time.Time) value.Value {
	if !f.defined {
		return value.Undefined()
	}

	dt := now.Sub(f.last)
	if dt <= 0 {
		return value.New(f.acc)
	}
	return value.New(f.acc * math.Exp(-dt.Seconds()/f.window.Seconds()))
}

// Window returns the configured decay window.
func (f *Filtered) Window() time.Duration {
	return f.window
}
