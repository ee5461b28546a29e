package tui

import "errors"

var (
	// ErrAborted signals the respondent aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilSession is returned when Run is handed a nil session.
	ErrNilSession = errors.New("tui: session is nil")
)
