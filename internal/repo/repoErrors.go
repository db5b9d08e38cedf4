package repo

import "errors"

var (
	ErrPollNotFound      = errors.New("poll not found")
	ErrOptionNotFound    = errors.New("option not found")
	ErrVoteNotFound      = errors.New("vote not found")
	ErrVoteAlreadyExists = errors.New("vote already exists")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrTokenNotFound     = errors.New("token not found")
)
