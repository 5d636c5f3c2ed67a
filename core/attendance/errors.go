package attendance

import "github.com/pkg/errors"

var (
	ErrInvalidMark    = errors.New("invalid attendance mark")
	ErrInvalidWeek    = errors.New("week must be between 1 and 4")
	ErrInvalidWeekday = errors.New("invalid weekday")
	ErrNotFinite      = errors.New("score must be a finite number")
	ErrInvalidLetter  = errors.New("invalid letter grade")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidValue   = errors.New("invalid value for field")
	ErrInvalidMonth   = errors.New("month must be formatted as YYYY-MM")
	ErrNotFound       = errors.New("sheet record not found")
)
