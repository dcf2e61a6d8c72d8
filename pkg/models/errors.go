package models

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidItem    = errors.New("invalid clothing item")
	ErrInvalidPattern = errors.New("invalid outfit pattern")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrEmptyOutfit    = errors.New("outfit must reference at least one item")
	ErrInvalidName    = errors.New("outfit name must not be empty")
	ErrUnauthorized   = errors.New("unauthorized")
)
