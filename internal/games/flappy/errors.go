package flappy

import "errors"

var (
	// ErrNoPendingPipe is returned when an observation is requested while no
	// un-passed pipe is queued. The lookahead guard in Step keeps this from
	// happening unless the pipe set is manipulated from outside.
	ErrNoPendingPipe = errors.New("flappy: no un-passed pipe to observe")

	// ErrEpisodeOver is returned by Step after the episode has terminated.
	ErrEpisodeOver = errors.New("flappy: episode is over, call Reset")

	// ErrInvalidAction is returned for actions outside {0, 1}.
	ErrInvalidAction = errors.New("flappy: invalid action")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("flappy: environment is closed")
)
