package domain

import "errors"

// Sentinel errors shared across usecases and adapters.
// Repositories translate their storage-level "no rows" conditions into
// ErrNotFound so services never depend on database/sql directly, and
// the HTTP adapter maps these onto response status codes.
var (
	// ErrNotFound signals that a referenced entity does not exist or is
	// not visible to the requesting user (ownership checks deliberately
	// do not distinguish the two cases)
	ErrNotFound = errors.New("not found")

	// ErrForbidden signals that the entity exists but the requesting
	// user may not act on it
	ErrForbidden = errors.New("forbidden")
)
