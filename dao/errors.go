package dao

import "errors"

// Database errors
var (
	ErrMissingID     = errors.New("missing id field")
	ErrMissingName   = errors.New("contact first and last name must be specified")
	ErrNoRows        = errors.New("sql: no rows in result set")
	ErrQueryTimeout  = errors.New("query timed out")
	ErrUnknownDriver = errors.New("unknown database driver")
)
