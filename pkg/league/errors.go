package league

import "errors"

var (
	ErrUnknownTeam     = errors.New("unknown team")
	ErrUnknownMatch    = errors.New("unknown match")
	ErrInvalidMatchday = errors.New("invalid matchday")
	ErrInvalidResult   = errors.New("invalid result")
	ErrInvalidImport   = errors.New("invalid league import")
	ErrInvalidShare    = errors.New("invalid share state")
	ErrInvalidInput    = errors.New("invalid input")
)
