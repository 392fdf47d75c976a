// Package sim provides deterministic simulated plants for the
// regulator daemon to drive. Each plant advances only on
// caller-supplied timestamps, so a run is exactly replayable.
package sim

import (
	"time"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"codeberg.org/nmarks/creditctl/internal/value"
)

// Plant is a process under control. Step advances the plant state to
// the given time under the given actuator drive and returns the new
// process variable. Setpoint returns the target the controller should
// hold at that time. Single-writer access, like the controller.
type Plant interface {
	Step(now time.Time, drive float64) value.Value
	Setpoint(now time.Time) value.Value
}

// Scenario names accepted by NewPlant.
const (
	ScenarioCredit  = "credit"
	ScenarioThermal = "thermal"
	ScenarioLander  = "lander"
)

// NewPlant constructs the named plant. The setpoint's meaning depends
// on the scenario: target credit ratio K, room temperature in °C, or
// hold altitude in metres.
func NewPlant(scenario string, setpoint float64) (Plant, error) {
	switch scenario {
	case ScenarioCredit:
		return NewCredit(setpoint)
	case ScenarioThermal:
		return NewThermal(setpoint), nil
	case ScenarioLander:
		return NewLander(setpoint), nil
	default:
		return nil, errors.New().WithData(errors.ErrInvalidScenario, scenario)
	}
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
