package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionFull        = errors.New("session is full")
	ErrSessionFinished    = errors.New("session is finished")
	ErrPlayerNotInSession = errors.New("player is not in session")

	// Round errors
	ErrNotAllGuessed = errors.New("not all players have guessed")
	ErrNoActiveRound = errors.New("no round in progress")
	ErrRoundScored   = errors.New("round has already been scored")

	// Infrastructure errors
	ErrStoreUnavailable = errors.New("session store unavailable")
	ErrSessionCorrupt   = errors.New("stored session is malformed")
	ErrLockUnavailable  = errors.New("lock unavailable")

	// Catalog errors
	ErrCatalogEmpty = errors.New("catalog is empty")
)
