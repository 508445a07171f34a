package analytics

import "errors"

var (
	// ErrReportNotFound indicates no report was fetched for the creator.
	ErrReportNotFound = errors.New("analytics report not found")
	// ErrInvalidInput indicates invalid analytics input.
	ErrInvalidInput = errors.New("invalid analytics input")
)
