package audit

import "errors"

var (
	ErrLogDirUnavailable = errors.New("log directory unavailable")
)
