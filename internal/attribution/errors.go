package attribution

import "errors"

// Sentinel errors for invalid engine input. These indicate a caller bug,
// never a data-quality condition; insufficient data is handled by the
// quality selector instead.
var (
	ErrEmptyPath       = errors.New("conversion path has no events")
	ErrUnknownModel    = errors.New("unknown attribution model")
	ErrInvalidHalfLife = errors.New("time-decay half-life must be positive")
)
