// Package control implements a PID feedback controller designed for
// irregular sampling intervals, missing readings, and actuator
// saturation. Callers supply every timestamp, so a loop is fully
// deterministic and replayable.
package control

import (
	"math"
	"time"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"codeberg.org/nmarks/creditctl/internal/value"
)

// Config holds the gains and output bounds of a controller. All three
// gains must be finite and non-negative; direction is a property of
// the plant coupling, not of the gains.
type Config struct {
	Kp        float64
	Ki        float64
	Kd        float64
	OutputMin float64
	OutputMax float64
}

// Validate checks the configuration at construction time, so that
// misconfiguration surfaces immediately rather than on the first tick.
func (c Config) Validate() error {
	errFactory := errors.New()

	for _, g := range []float64{c.Kp, c.Ki, c.Kd} {
		if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
			return errFactory.WithData(ErrInvalidGain, g)
		}
	}
	if math.IsNaN(c.OutputMin) || math.IsNaN(c.OutputMax) || c.OutputMin > c.OutputMax {
		return errFactory.WithData(ErrInvalidBounds, [2]float64{c.OutputMin, c.OutputMax})
	}

	return nil
}

// Terms is the per-tick breakdown of the controller output, for
// logging and metrics. P, I and D are the signed contributions that
// sum to the raw output before clamping.
type Terms struct {
	P         float64
	I         float64
	D         float64
	Error     float64
	Saturated bool
}

// Controller is one control loop's persistent state between ticks. It
// assumes single-writer access; callers driving a loop from multiple
// goroutines must serialize externally.
type Controller struct {
	cfg Config

	integral  float64
	lastPV    float64
	lastTime  time.Time
	lastOut   value.Value
	lastTerms Terms
	primed    bool
}

// New creates a Controller with the given gains and output bounds.
func New(cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Controller{cfg: cfg}, nil
}

// Config returns the controller's gains and bounds.
func (c *Controller) Config() Config {
	return c.cfg
}

// Tick advances the loop to the given time and returns the bounded
// control output together with its term breakdown.
//
// The first successful tick primes the history and returns the
// proportional term only. A tick with a non-increasing timestamp, or
// with an undefined setpoint or process variable, freezes the loop:
// the previous output is returned unchanged and no state advances.
// The returned output is undefined only while no tick has ever
// succeeded.
func (c *Controller) Tick(now time.Time, setpoint, pv value.Value) (value.Value, Terms) {
	err := setpoint.Sub(pv)
	if !err.Defined() {
		return c.lastOut, c.lastTerms
	}
	e := err.Float()

	if !c.primed {
		c.lastPV = pv.Float()
		c.lastTime = now
		c.integral = 0
		c.primed = true
		return c.emit(e, 0, 0)
	}

	dt := now.Sub(c.lastTime).Seconds()
	if dt <= 0 {
		return c.lastOut, c.lastTerms
	}

	// Integrate, clamping the accumulator to the range that maps onto
	// the output bounds so that saturation cannot wind it up further.
	if c.cfg.Ki > 0 {
		c.integral = clamp(c.integral+e*dt, c.cfg.OutputMin/c.cfg.Ki, c.cfg.OutputMax/c.cfg.Ki)
	}

	// Derivative on measurement, not on error: a setpoint step must
	// not spike the output.
	derivative := (pv.Float() - c.lastPV) / dt

	c.lastPV = pv.Float()
	c.lastTime = now

	return c.emit(e, c.cfg.Ki*c.integral, -c.cfg.Kd*derivative)
}

// Reset clears the integral accumulator and sample history. Gains and
// bounds are untouched; the next tick behaves like a first tick.
func (c *Controller) Reset() {
	c.integral = 0
	c.lastPV = 0
	c.lastTime = time.Time{}
	c.lastOut = value.Undefined()
	c.lastTerms = Terms{}
	c.primed = false
}

func (c *Controller) emit(e, iTerm, dTerm float64) (value.Value, Terms) {
	pTerm := c.cfg.Kp * e
	raw := pTerm + iTerm + dTerm
	out := clamp(raw, c.cfg.OutputMin, c.cfg.OutputMax)

	c.lastTerms = Terms{
		P:         pTerm,
		I:         iTerm,
		D:         dTerm,
		Error:     e,
		Saturated: out != raw,
	}
	c.lastOut = value.New(out)

	return c.lastOut, c.lastTerms
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
