package domain

import "errors"

var (
	// ErrStoreNotReady is returned when the store is used before it was opened or after it was closed.
	ErrStoreNotReady = errors.New("command store not initialized")
	// ErrAliasNotFound is returned when an alias lookup misses.
	ErrAliasNotFound = errors.New("alias not found")
	// ErrNoMatches is returned when a run query resolves to nothing.
	ErrNoMatches = errors.New("no matching commands found")
	// ErrCommandExcluded is returned when a command matches an exclusion pattern.
	ErrCommandExcluded = errors.New("command excluded (contains sensitive pattern)")
	// ErrCancelled is returned when the user declines a prompt.
	ErrCancelled = errors.New("cancelled")
	// ErrCommandBlocked is returned when a guardrail rule forbids running a command.
	ErrCommandBlocked = errors.New("command blocked by guardrail")
)
