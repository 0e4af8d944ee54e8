package errors

import "errors"

var (
	ErrStartupFailure    = errors.New("engine failed to start")
	ErrTimeout           = errors.New("timeout to reply")
	ErrEngineExited      = errors.New("engine exited before reply")
	ErrEngineNotRunning  = errors.New("engine is not running")
	ErrCacheMiss         = errors.New("analysis not found in cache")
	ErrStoreNotAvailable = errors.New("store is not configured")
)
