package history

import "errors"

// Sentinel errors for transcript persistence. A missing transcript file is
// not an error; a present but unreadable one is.
var (
	ErrMalformed  = errors.New("malformed transcript")
	ErrLoadFailed = errors.New("transcript load failed")
	ErrSaveFailed = errors.New("transcript save failed")
)
