package core

import "errors"

// Engine error taxonomy. Callers match with errors.Is and map the
// sentinels to transport-level outcomes.
var (
	// ErrNotFound reports a missing bill, account, category or ledger record.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyPaid reports a payment attempt on an occurrence that
	// already carries a payment override.
	ErrAlreadyPaid = errors.New("bill already paid")

	// ErrNotPaid reports a payment cancellation on an unpaid occurrence.
	ErrNotPaid = errors.New("bill is not paid")

	// ErrInvalidOperation reports a request the engine cannot express:
	// cascading an edit past a paid occurrence, combining applyToFuture
	// with a series-shape change (endDate, frequency), or cascading a
	// due date behind its own occurrence.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrDependencyFailure reports a collaborator (ledger, storage)
	// rejecting its part of an atomic unit. The whole unit rolls back.
	ErrDependencyFailure = errors.New("dependency failure")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrNameTooLong      = errors.New("name too long")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidKind      = errors.New("invalid category kind")
	ErrInvalidDateRange = errors.New("end date must not precede due date")
)
