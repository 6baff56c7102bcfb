package services

import "errors"

var (
	ErrStudyNotFound  = errors.New("study not found")
	ErrSeriesNotFound = errors.New("series not found")
	ErrImageNotFound  = errors.New("image not found")
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAuditUnavailable is returned by audit reads when no database is
	// configured.
	ErrAuditUnavailable = errors.New("audit log unavailable")
)
