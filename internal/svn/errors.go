package svn

import "errors"

var (
	ErrInvalidRoot    = errors.New("invalid working copy root")
	ErrNoChanges      = errors.New("no changes selected")
	ErrStatusFailed   = errors.New("failed to query status")
	ErrCheckoutFailed = errors.New("failed to check out repository")
	ErrCommitFailed   = errors.New("failed to commit changes")
	ErrRevertFailed   = errors.New("failed to revert changes")
	ErrHistoryFailed  = errors.New("failed to read history")
)
