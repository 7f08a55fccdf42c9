package transaction

import "fmt"

var (
	ErrNotFound          = fmt.Errorf("transaction not found")
	ErrInvalidAmount     = fmt.Errorf("amount must be greater than zero")
	ErrInvalidTransition = fmt.Errorf("illegal transaction status transition")
	ErrDuplicateEvent    = fmt.Errorf("duplicate event rejected by idempotency guard")
	ErrNotYours          = fmt.Errorf("transaction belongs to a different user")
	ErrBelowMinimum      = fmt.Errorf("amount below withdrawal minimum")
)
