package sheet

import (
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
)

var (
	ErrLoadFailed      = errors.New("could not load the attendance sheet")
	ErrRowNotFound     = errors.New("student is not on this sheet")
	ErrSessionClosed   = errors.New("sheet session is closed")
	ErrSessionNotFound = errors.New("no open sheet for this month")
	ErrUnsavedChanges  = errors.New("some rows could not be saved")
)

// editError turns a rejected row edit into a core.ValidationError on the offending field.
func editError(err error, field string) error {
	cause := errors.Cause(err)
	switch cause {
	case attendance.ErrInvalidWeek:
		field = "week"
	case attendance.ErrInvalidWeekday:
		field = "day"
	case attendance.ErrInvalidMark:
		field = "mark"
	case attendance.ErrUnknownField:
		field = "field"
	}
	return core.NewFieldValidationError(field, cause)
}
