package session

import "errors"

var (
	// ErrNilPresenter is returned by New when no presentation adapter is
	// injected; the engine cannot obtain human input without one.
	ErrNilPresenter = errors.New("presenter must not be nil")
)
