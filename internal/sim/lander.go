package sim

import (
	"time"

	"codeberg.org/nmarks/creditctl/internal/value"
)

// Lander models a vertical-thrust vehicle station-keeping above a
// launch pad. Drive is thrust in newtons, clamped to the engine's
// range; gravity pulls the vehicle down; the pad stops it. The
// setpoint ramps from the pad to the hold altitude over the climb
// phase, then holds, so the controller sees a moving target rather
// than a step.
type Lander struct {
	Gravity   float64 // m/s², negative down
	Mass      float64 // kg
	ThrustMax float64 // N
	PadHeight float64 // m
	ClimbTime float64 // s to reach hold altitude

	hold     float64
	altitude float64
	velocity float64
	epoch    time.Time
	last     time.Time
	primed   bool
}

// NewLander creates a lander resting on the pad with the given hold
// altitude in metres.
func NewLander(hold float64) *Lander {
	return &Lander{
		Gravity:   -9.81,
		Mass:      1,
		ThrustMax: 30,
		PadHeight: 0.1,
		ClimbTime: 10,
		hold:      hold,
		altitude:  0.1,
	}
}

func (p *Lander) Step(now time.Time, drive float64) value.Value {
	if !p.primed {
		p.epoch = now
		p.last = now
		p.primed = true
		return value.New(p.altitude)
	}

	dt := now.Sub(p.last).Seconds()
	if dt <= 0 {
		return value.New(p.altitude)
	}
	p.last = now

	thrust := clamp(drive, 0, p.ThrustMax)
	accel := p.Gravity + thrust/p.Mass

	v0 := p.velocity
	p.velocity += accel * dt
	p.altitude += (v0 + p.velocity) / 2 * dt

	// Pad contact kills downward motion.
	if p.altitude <= p.PadHeight {
		p.altitude = p.PadHeight
		if p.velocity < 0 {
			p.velocity = 0
		}
	}

	return value.New(p.altitude)
}

func (p *Lander) Setpoint(now time.Time) value.Value {
	if !p.primed {
		return value.New(p.PadHeight)
	}
	elapsed := now.Sub(p.epoch).Seconds()
	if elapsed >= p.ClimbTime {
		return value.New(p.hold)
	}
	return value.Scale(value.New(elapsed), 0, p.ClimbTime, p.PadHeight, p.hold)
}
