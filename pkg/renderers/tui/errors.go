package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoContainers is returned for layouts without containers.
	ErrNoContainers = errors.New("tui: layout has no containers")
)
