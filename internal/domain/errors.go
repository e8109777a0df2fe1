package domain

import "errors"

var (
	// ErrValidation is returned for malformed or missing required input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when a session, question, or other resource is unknown.
	ErrNotFound = errors.New("not found")
	// ErrAlreadySubmitted is returned when a session has already reached its terminal state.
	ErrAlreadySubmitted = errors.New("session already submitted")
	// ErrExpired is returned when the session deadline has passed.
	ErrExpired = errors.New("session expired")
	// ErrUnauthorized is returned when the admin credential check fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInsufficientQuestions is returned when the bank has fewer eligible
	// questions than the configured per-session count.
	ErrInsufficientQuestions = errors.New("not enough questions available")
)
