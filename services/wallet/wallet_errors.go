package wallet

import "fmt"

var (
	ErrWalletNotFound    = fmt.Errorf("wallet not found")
	ErrWalletInactive    = fmt.Errorf("wallet is not active")
	ErrInvalidAmount     = fmt.Errorf("amount must be greater than zero")
	ErrInsufficientFunds = fmt.Errorf("insufficient funds")
	ErrOverUnlock        = fmt.Errorf("unlock exceeds locked balance")
)
