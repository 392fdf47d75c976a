package sim

import (
	"time"

	"codeberg.org/nmarks/creditctl/internal/filtered"
	"codeberg.org/nmarks/creditctl/internal/value"
)

// Credit models a currency backed by a reference basket of
// commodities. The currency's health is the credit ratio K:
// the reference basket price divided by the rolling observed basket
// price. Issuing credit inflates prices and pushes K down; retiring
// credit does the opposite. The controller's job is to hold K at its
// target by adjusting the issuance rate (the drive).
//
// Prices carry a small deflationary drift, standing in for wealth
// growth, so a steady positive issuance is needed just to hold K — the
// loop has a real steady-state error for the integral term to remove.
type Credit struct {
	Drift       float64 // baseline price drift per second, negative deflates
	Sensitivity float64 // price response per unit issuance rate

	reference float64
	price     float64
	rolling   *filtered.WindowAverage
	targetK   float64
	last      time.Time
	primed    bool
}

// NewCredit creates a credit plant targeting the given ratio K.
func NewCredit(targetK float64) (*Credit, error) {
	rolling, err := filtered.NewWindowAverage(30 * time.Second)
	if err != nil {
		return nil, err
	}
	return &Credit{
		Drift:       -0.01,
		Sensitivity: 0.05,
		reference:   100,
		price:       100,
		rolling:     rolling,
		targetK:     targetK,
	}, nil
}

func (p *Credit) Step(now time.Time, drive float64) value.Value {
	if !p.primed {
		p.last = now
		p.primed = true
		p.rolling.Observe(now, value.New(p.price))
		return p.ratio(now)
	}

	dt := now.Sub(p.last).Seconds()
	if dt <= 0 {
		return p.ratio(now)
	}
	p.last = now

	p.price *= 1 + (p.Drift+p.Sensitivity*drive)*dt
	if p.price < 0 {
		p.price = 0
	}
	p.rolling.Observe(now, value.New(p.price))

	return p.ratio(now)
}

func (p *Credit) Setpoint(time.Time) value.Value {
	return value.New(p.targetK)
}

// ratio returns K against the rolling basket price. Undefined while
// no price has been observed, or across a transient zero price.
func (p *Credit) ratio(now time.Time) value.Value {
	return value.New(p.reference).Div(p.rolling.Current(now))
}
