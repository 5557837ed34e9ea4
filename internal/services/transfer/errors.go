package transfer

import "errors"

var (
	// ErrInvalidReceiver is returned on self-transfers.
	ErrInvalidReceiver = errors.New("the receiver must be a different account")

	// ErrInvalidAmount is returned when the normalized amount is not positive.
	ErrInvalidAmount = errors.New("the amount must be greater than 0")

	// ErrAccountNotFound is returned when a lock target does not exist.
	ErrAccountNotFound = errors.New("the selected account is invalid")

	// ErrInsufficientFunds is returned when the sender's balance does not
	// cover the amount plus commission.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
