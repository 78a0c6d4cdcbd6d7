package events

import "errors"

var (
	ErrBrokerClosed = errors.New("broker closed")
)
