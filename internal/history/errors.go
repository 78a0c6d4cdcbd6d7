package history

import "errors"

var (
	ErrMalformed = errors.New("malformed log output")
)
