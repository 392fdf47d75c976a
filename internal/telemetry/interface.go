package telemetry

import (
	"context"
	"time"
)

// Collector defines the core domain interface
type Collector interface {
	Record(ctx context.Context, snapshot *TickSnapshot) error
	Close() error
}

// Repository defines the interface for snapshot storage
type Repository interface {
	Store(ctx context.Context, snapshot *TickSnapshot) error
	Last(ctx context.Context) (*TickSnapshot, error)
	Close() error
}

// TickSnapshot is one control tick as persisted: the controller's
// inputs, term breakdown and bounded output.
type TickSnapshot struct {
	Timestamp        time.Time
	Scenario         string
	Setpoint         float64
	ProcessVariable  float64
	FilteredVariable float64
	Error            float64
	PTerm            float64
	ITerm            float64
	DTerm            float64
	Output           float64
	Saturated        bool
}
