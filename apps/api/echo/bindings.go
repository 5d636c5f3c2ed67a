package echoapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
)

const (
	monthParam   = "month"
	studentParam = "student"
)

// bindMonth reads the `:month` path param (YYYY-MM).
func bindMonth(ctx echo.Context) (attendance.Month, error) {
	month, err := attendance.ParseMonth(ctx.Param(monthParam))
	if err != nil {
		return attendance.Month{}, core.NewFieldValidationError(monthParam, err)
	}
	return month, nil
}

type (
	MarkRequest struct {
		Week int    `json:"week" validate:"required,min=1,max=4"`
		Day  string `json:"day" validate:"required,weekday"`
		Mark string `json:"mark" validate:"mark"`
	}

	AssessmentRequest struct {
		Week  int      `json:"week" validate:"required,min=1,max=4"`
		Score *float64 `json:"score" validate:"omitempty,finite"`
	}

	FieldRequest struct {
		Field string      `json:"field" validate:"required,sheetfield"`
		Value interface{} `json:"value"`
	}
)

func (mr *MarkRequest) Validate(validate *validator.Validate) (attendance.Weekday, attendance.Mark, error) {
	if err := validate.Struct(mr); err != nil {
		return 0, attendance.Unset, err
	}
	day, _ := attendance.ParseWeekday(mr.Day)
	mark, _ := attendance.ParseMark(mr.Mark)
	return day, mark, nil
}

func (ar *AssessmentRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ar)
}

func (fr *FieldRequest) Validate(validate *validator.Validate) (attendance.Field, error) {
	if err := validate.Struct(fr); err != nil {
		return "", err
	}
	return attendance.Field(fr.Field), nil
}
