package events

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotCreator    = errors.New("creator role required")
	ErrForbidden     = errors.New("event belongs to another creator")
	ErrInvalidEvent  = errors.New("invalid event")
)
