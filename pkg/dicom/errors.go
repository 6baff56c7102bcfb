package dicom

import "errors"

var (
	// ErrFileAccess is returned when the byte source cannot be opened or read
	ErrFileAccess = errors.New("file access failure")

	// ErrUnsupportedTransferSyntax is returned for compressed transfer syntaxes
	ErrUnsupportedTransferSyntax = errors.New("unsupported transfer syntax")

	// ErrInvalidContainer is returned when rows, columns or pixel data were not located
	ErrInvalidContainer = errors.New("invalid container")

	// ErrMalformedHeader is returned when the tag stream cannot be walked
	ErrMalformedHeader = errors.New("malformed header")

	// ErrUnsupportedPixelFormat is returned for sample/bit combinations other
	// than 1x8, 1x16 and 3x8
	ErrUnsupportedPixelFormat = errors.New("unsupported pixel format")
)
