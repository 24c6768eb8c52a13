// Package storage defines persistence contracts for the council service.
//
// It covers per-player divine favor with its change history, timed divine
// effects, and the write-once council records used to guard consequence
// application. Implementations live in subpackages.
//
// Common error types:
//   - ErrNotFound: requested record is missing
//   - ErrAlreadyExists: a council record with the same id was already written
package storage
