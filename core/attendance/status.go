package attendance

import "strings"

// Status is the manual pass/repeat decision of a row.
type Status string

const (
	StatusUnset  Status = ""
	StatusPassed Status = "passed"
	StatusRepeat Status = "repeat"
)

// Advance returns the next status of the cycle Unset -> Passed -> Repeat -> Unset.
// It never looks at grades or attendance: passing is the teacher's call.
func (s Status) Advance() Status {
	switch s {
	case StatusUnset:
		return StatusPassed
	case StatusPassed:
		return StatusRepeat
	default:
		return StatusUnset
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusUnset, StatusPassed, StatusRepeat:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return StatusUnset, ErrInvalidStatus
	}
	return st, nil
}

// LetterGrade is the letter equivalent entered by the teacher. The zero value means not set.
type LetterGrade string

const (
	LetterNone  LetterGrade = ""
	LetterAPlus LetterGrade = "A+"
	LetterA     LetterGrade = "A"
	LetterBPlus LetterGrade = "B+"
	LetterB     LetterGrade = "B"
	LetterC     LetterGrade = "C"
	LetterD     LetterGrade = "D"
)

var LetterGrades = [...]LetterGrade{LetterAPlus, LetterA, LetterBPlus, LetterB, LetterC, LetterD}

func (l LetterGrade) Valid() bool {
	if l == LetterNone {
		return true
	}
	for _, lg := range LetterGrades {
		if l == lg {
			return true
		}
	}
	return false
}

func ParseLetterGrade(s string) (LetterGrade, error) {
	l := LetterGrade(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return LetterNone, ErrInvalidLetter
	}
	return l, nil
}
