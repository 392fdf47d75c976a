package filtered

import "codeberg.org/nmarks/creditctl/internal/errors"

const (
	// Configuration errors
	ErrInvalidWindow = errors.ErrorCode("filtered_invalid_window")
)
