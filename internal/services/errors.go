package services

import (
	"errors"

	"homepath/api/internal/db"
)

var (
	// ErrNotFound aliases the store's not-found error so callers can match either.
	ErrNotFound = db.ErrNotFound

	// ErrInvalidTransition is returned when an entity cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidMilestone is returned for milestone ids outside the journey.
	ErrInvalidMilestone = errors.New("unknown milestone")

	// ErrInvalidStatus is returned for status values the entity does not know.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidCode is returned when a one-time code is wrong or expired.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrTooManyAttempts is returned once a one-time code has been guessed too often.
	ErrTooManyAttempts = errors.New("too many attempts")

	// ErrInvalidCredentials is returned for a failed admin login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAssistantUnavailable is returned when the chat model could not answer.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)
