package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("requested resource not found")
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrInternalServer = errors.New("internal server error")

	// Duel-domain errors. ErrCannotJoin deliberately covers both "session
	// full" and "session missing" so the join endpoint reports one uniform
	// failure and cannot be used to probe which session ids exist.
	ErrSessionNotFound  = errors.New("session not found")
	ErrCannotJoin       = errors.New("session full or not found")
	ErrUnknownProblem   = errors.New("problem not found")
	ErrRoundStillActive = errors.New("round is still active")
	ErrMatchCompleted   = errors.New("match completed")
	ErrNoMoreRounds     = errors.New("no more rounds")
	ErrNoMoreProblems   = errors.New("no more problems in catalog")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUnknownProblem):
		return http.StatusNotFound
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCannotJoin),
		errors.Is(err, ErrRoundStillActive),
		errors.Is(err, ErrMatchCompleted),
		errors.Is(err, ErrNoMoreRounds),
		errors.Is(err, ErrNoMoreProblems):
		return http.StatusBadRequest
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
