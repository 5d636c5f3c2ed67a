package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
)

var (
	markTag  = "mark"
	markText = "must be one of present, late, very_late, absent or empty"

	weekdayTag  = "weekday"
	weekdayText = "must be one of sun, mon, tue, wed, thu"

	letterTag  = "letter"
	letterText = "must be one of A+, A, B+, B, C, D or empty"

	sheetFieldTag  = "sheetfield"
	sheetFieldText = "unknown sheet field"
)

// InitValidators registers the attendance sheet validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(markTag, markValidation)
	core.RegisterCustomTranslation(validate, translator, markTag, markText)

	_ = validate.RegisterValidation(weekdayTag, weekdayValidation)
	core.RegisterCustomTranslation(validate, translator, weekdayTag, weekdayText)

	_ = validate.RegisterValidation(letterTag, letterValidation)
	core.RegisterCustomTranslation(validate, translator, letterTag, letterText)

	_ = validate.RegisterValidation(sheetFieldTag, sheetFieldValidation)
	core.RegisterCustomTranslation(validate, translator, sheetFieldTag, sheetFieldText)
}

func markValidation(fl validator.FieldLevel) bool {
	_, err := ParseMark(fl.Field().String())
	return err == nil
}

func weekdayValidation(fl validator.FieldLevel) bool {
	_, err := ParseWeekday(fl.Field().String())
	return err == nil
}

func letterValidation(fl validator.FieldLevel) bool {
	_, err := ParseLetterGrade(fl.Field().String())
	return err == nil
}

func sheetFieldValidation(fl validator.FieldLevel) bool {
	return Field(fl.Field().String()).Valid()
}
