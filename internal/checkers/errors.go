package checkers

import "errors"

var (
	ErrInvalidIndex = errors.New("checkers: index out of range")
	ErrLoadFailed   = errors.New("checkers: board load failed")
	ErrNoLegalMove  = errors.New("checkers: no legal move available")
	ErrIllegalMove  = errors.New("checkers: illegal move")
	ErrOffBoard     = errors.New("checkers: coordinate off board")
)
