package services

import "errors"

// ErrInvalidImage is returned when an upload is not an accepted image.
var ErrInvalidImage = errors.New("invalid image upload")

// ErrImageTooLarge is returned when an upload exceeds the size cap.
var ErrImageTooLarge = errors.New("image too large")
