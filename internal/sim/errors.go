package sim

import "errors"

// Sentinel errors for the simulation core. Structural errors abort the one
// operation that raised them; lookup errors are contained at the entity
// boundary during fan-out and the entity is skipped for the tick.
var (
	ErrInvalidBotClass        = errors.New("invalid bot class")
	ErrInsufficientHistory    = errors.New("stock timeline has no seed point")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientHolding    = errors.New("insufficient holding")
	ErrLookupTimeout          = errors.New("collaborator lookup timed out")
	ErrLookupFailure          = errors.New("collaborator lookup failed")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
)
