package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput        = crerr.New("invalid input")
	ErrNotFound            = crerr.New("resource not found")
	ErrRaceNotLocked       = crerr.New("race is not locked")
	ErrMissingFinalResults = crerr.New("missing final results")
	ErrRaceWindowClosed    = crerr.New("race window closed")
)
