package sim

import (
	"time"

	"codeberg.org/nmarks/creditctl/internal/value"
)

// Thermal models a single room with an electric heater: a first-order
// lumped system where heat leaks to ambient in proportion to the
// temperature difference. Drive is a duty cycle in [0,1] scaled onto
// the heater's power range.
type Thermal struct {
	HeaterMax float64 // heater power at full drive, W
	Ambient   float64 // outside temperature, °C
	Capacity  float64 // thermal mass, J/°C
	LossCoeff float64 // leakage, W/°C of delta over ambient

	target float64
	temp   float64
	last   time.Time
	primed bool
}

// NewThermal creates a room at ambient temperature with the given
// target in °C.
func NewThermal(target float64) *Thermal {
	return &Thermal{
		HeaterMax: 1500,
		Ambient:   10,
		Capacity:  40000,
		LossCoeff: 60,
		target:    target,
		temp:      10,
	}
}

func (p *Thermal) Step(now time.Time, drive float64) value.Value {
	if !p.primed {
		p.last = now
		p.primed = true
		return value.New(p.temp)
	}

	dt := now.Sub(p.last).Seconds()
	if dt <= 0 {
		return value.New(p.temp)
	}
	p.last = now

	watts := value.Scale(value.New(clamp(drive, 0, 1)), 0, 1, 0, p.HeaterMax).Float()
	p.temp += dt * (watts - p.LossCoeff*(p.temp-p.Ambient)) / p.Capacity

	return value.New(p.temp)
}

func (p *Thermal) Setpoint(time.Time) value.Value {
	return value.New(p.target)
}
