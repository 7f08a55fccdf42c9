package mining

import "errors"

var (
	ErrPackageNotFound     = errors.New("mining package not found")
	ErrPackageInactive     = errors.New("mining package is not available for purchase")
	ErrHoldingNotFound     = errors.New("mining holding not found")
	ErrNotYours            = errors.New("mining holding belongs to another user")
	ErrInvalidHoldingState = errors.New("mining holding cannot change state from its current status")
)
