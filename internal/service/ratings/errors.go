package ratings

import "errors"

var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidStars   = errors.New("stars must be between 1 and 5")
	ErrNotOwner       = errors.New("rating belongs to another user")
)
