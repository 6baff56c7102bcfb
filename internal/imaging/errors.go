package imaging

import "errors"

var (
	// ErrInvalidPixelOperation is returned when a write does not match the
	// image's bit depth or sample count. Nothing is modified.
	ErrInvalidPixelOperation = errors.New("invalid pixel operation")

	// ErrImageTypeNotSet is returned when an image with an undefined type is
	// placed into a series.
	ErrImageTypeNotSet = errors.New("image type not set")

	// ErrSlotEmpty is returned when a series operation needs an image type
	// the series does not hold.
	ErrSlotEmpty = errors.New("series has no image of that type")

	// ErrSidecarVersion is returned when a series description file carries
	// an unknown version line.
	ErrSidecarVersion = errors.New("unsupported series description version")

	// ErrPixelsUnavailable is returned when the pixels of an image could not
	// be materialised.
	ErrPixelsUnavailable = errors.New("pixels unavailable")
)
