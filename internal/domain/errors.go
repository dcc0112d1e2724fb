package domain

import "errors"

var (
	// ErrNotFound is returned when a scenario id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks caller mistakes caught before any network call.
	ErrInvalidInput = errors.New("invalid input")

	ErrTooFewScenarios  = errors.New("select at least 2 scenarios to compare")
	ErrTooManyScenarios = errors.New("you can compare maximum 3 scenarios at once")
)
