package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidPlayerID = errors.New("invalid player id")

	// Wire errors
	ErrMalformedEvent   = errors.New("malformed event")
	ErrUnknownEventType = errors.New("unknown event type")

	// Session errors
	ErrResponderFailed = errors.New("responder failed")

	// Result errors
	ErrDuelNotFound = errors.New("duel not found")
)
