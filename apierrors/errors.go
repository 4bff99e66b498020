package apierrors

import "errors"

// Failure classes surfaced by the command ledger and the poll resolver. Each
// maps to a distinct response status at the transport boundary.
var (
	// ErrOutsideIssuanceWindow rejects issuance requests whose time_issued is
	// too far from the server clock.
	ErrOutsideIssuanceWindow = errors.New("command issued outside the accepted time window")

	// ErrSerialization covers an instruction payload that could not be encoded.
	ErrSerialization = errors.New("instruction could not be serialized")

	// ErrCorruptedRecord covers a stored instruction that no longer decodes.
	// This is surfaced, never masked as a safety abort.
	ErrCorruptedRecord = errors.New("stored instruction is unreadable")

	// ErrPersistence covers any ledger I/O failure.
	ErrPersistence = errors.New("command store unavailable")

	// ErrUnsupportedTransition rejects instruction sequences the protocol
	// does not define.
	ErrUnsupportedTransition = errors.New("instruction sequence not supported")

	// ErrNotFound is reported when a requested row does not exist.
	ErrNotFound = errors.New("record not found")
)
