// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: an
// unknown ticket code becomes a 404, a duplicate entrant becomes a
// 409, and a lost status race also surfaces as a 409 so staff can
// re-read before retrying.
package repository

import "errors"

// ErrRegistrantNotFound is returned when no registrant matches the
// given ticket code or id. Handlers translate this into HTTP 404.
var ErrRegistrantNotFound = errors.New("registrant not found")

// ErrDuplicateEntrant is returned when a (first name, last name) pair
// already exists among registrants. Handlers translate this into
// HTTP 409, distinct from generic validation failures.
var ErrDuplicateEntrant = errors.New("duplicate entrant")

// ErrCodeCollision is returned when a freshly generated ticket code
// hits the unique index. Callers regenerate and retry; it never
// escapes to a handler.
var ErrCodeCollision = errors.New("ticket code collision")

// ErrConflict is returned when a conditional status update matched no
// row because the expected current state changed underneath the
// caller. Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")
