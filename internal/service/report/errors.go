package report

import "errors"

// Sentinel errors for the report service layer.
var (
	ErrInvalidDateRange  = errors.New("date_from must be before date_to")
	ErrDateRangeTooWide  = errors.New("date range exceeds the configured maximum")
	ErrSettingsNotFound  = errors.New("organization settings not found")
	ErrInvalidWindowDays = errors.New("attribution window cannot be negative")
)
