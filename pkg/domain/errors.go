package domain

import "errors"

// ErrRunNotFound is returned when a run ID cannot be found in a store.
var ErrRunNotFound = errors.New("run not found")

// ErrNoStartActions is returned when a table defines no start actions.
var ErrNoStartActions = errors.New("transition table has no start actions")
