package control

import "codeberg.org/nmarks/creditctl/internal/errors"

const (
	// Configuration errors
	ErrInvalidGain   = errors.ErrorCode("control_invalid_gain")
	ErrInvalidBounds = errors.ErrorCode("control_invalid_bounds")
)
