package filtered

import (
	"time"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"codeberg.org/nmarks/creditctl/internal/value"
)

type sampleAt struct {
	at time.Time
	v  float64
}

// WindowAverage is a time-weighted mean over an explicit ring of
// timestamped samples. Each value is considered to persist until the
// next sample supersedes it, so a freshly observed value only begins
// to influence the mean once time has passed. The oldest sample is
// retained past the window edge and clipped to it, covering the part
// of the window for which no in-window sample exists.
//
// Prefer Filtered where bounded memory matters; WindowAverage gives an
// exact sliding-window mean at the cost of holding the samples.
type WindowAverage struct {
	window  time.Duration
	history []sampleAt
}

// NewWindowAverage creates a WindowAverage over the given window.
func NewWindowAverage(window time.Duration) (*WindowAverage, error) {
	if window <= 0 {
		return nil, errors.New().WithData(ErrInvalidWindow, window)
	}
	return &WindowAverage{window: window}, nil
}

// Observe records a sample at the given time. Undefined samples and
// non-increasing timestamps are ignored, under the same policies as
// Filtered.Observe.
func (w *WindowAverage) Observe(now time.Time, sample value.Value) {
	if !sample.Defined() {
		return
	}
	if n := len(w.history); n > 0 && !now.After(w.history[n-1].at) {
		return
	}

	w.history = append(w.history, sampleAt{at: now, v: sample.Float()})

	// Drop leading samples once their successor is also at or past the
	// window edge; the survivor straddles the edge and is clipped in
	// Current.
	deadline := now.Add(-w.window)
	for len(w.history) > 1 && !w.history[1].at.After(deadline) {
		w.history = w.history[1:]
	}
}

// Current returns the time-weighted mean over (now-window, now]. It is
// read-only and idempotent. Before any valid observation the result is
// undefined.
func (w *WindowAverage) Current(now time.Time) value.Value {
	if len(w.history) == 0 {
		return value.Undefined()
	}

	start := now.Add(-w.window)
	begin := w.history[0].at
	if begin.Before(start) {
		begin = start
	}

	span := now.Sub(begin).Seconds()
	if span <= 0 {
		// Single instant of history; the latest value stands alone.
		return value.New(w.history[len(w.history)-1].v)
	}

	sum := 0.0
	for i, s := range w.history {
		from := s.at
		if from.Before(start) {
			from = start
		}
		until := now
		if i+1 < len(w.history) {
			until = w.history[i+1].at
		}
		if until.Before(from) {
			continue
		}
		sum += s.v * until.Sub(from).Seconds()
	}

	return value.New(sum / span)
}

// Window returns the configured averaging window.
func (w *WindowAverage) Window() time.Duration {
	return w.window
}
