package process

import "errors"

var (
	ErrSpawnFailed = errors.New("failed to spawn process")
	ErrStdinClosed = errors.New("stdin already closed")
)
