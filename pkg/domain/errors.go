package domain

import (
	"errors"
	"fmt"
)

// Domain error taxonomy. Every error here is a per-command failure that
// leaves prior state unchanged; none is fatal to the process.
var (
	// ErrNotFound is returned when a requested account, plan, transaction or
	// investment does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned when command input fails validation before
	// any state mutation.
	ErrValidation = errors.New("validation error")

	// ErrInsufficientBalance is returned by withdrawal and investment
	// commands when the account cannot cover the amount. No partial effect
	// occurs.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidStateTransition is returned when a transaction is asked to
	// leave a terminal state. Indicates a stale caller; logged, not fatal.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrAlreadyResolved is returned when resolving a transaction that is no
	// longer pending. It is a specialization of ErrInvalidStateTransition.
	ErrAlreadyResolved = fmt.Errorf("%w: transaction already resolved", ErrInvalidStateTransition)

	// ErrConcurrencyConflict is returned when the per-account serialization
	// guarantee detects a stale write. The caller should retry the command.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)
