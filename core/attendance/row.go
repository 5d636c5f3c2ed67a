package attendance

import "github.com/pkg/errors"

// Field names an overall evaluation field of a Row that the teacher edits directly.
type Field string

const (
	FieldOverallScore       Field = "overall_score"
	FieldTeacherEvaluation1 Field = "teacher_evaluation_1"
	FieldTeacherEvaluation2 Field = "teacher_evaluation_2"
	FieldFinalGrade         Field = "final_grade"
	FieldLetterEquivalent   Field = "letter_equivalent"
	FieldNotes              Field = "notes"
)

var Fields = [...]Field{
	FieldOverallScore, FieldTeacherEvaluation1, FieldTeacherEvaluation2,
	FieldFinalGrade, FieldLetterEquivalent, FieldNotes,
}

func (f Field) Valid() bool {
	for _, fld := range Fields {
		if f == fld {
			return true
		}
	}
	return false
}

// Row is one student's line of the monthly sheet.
// Edits replace pointer fields instead of writing through them, so copies of a Row never share mutable state.
type Row struct {
	StudentID   string
	StudentName string
	Phone       string

	Weeks  [WeeksPerMonth]WeeklyRecord
	Totals MonthlyTotals

	OverallScore       *float64
	TeacherEvaluation1 *float64
	TeacherEvaluation2 *float64
	FinalGrade         *float64
	LetterEquivalent   LetterGrade
	Status             Status
	Notes              *string

	PersistedID    string
	Dirty          bool
	HasCertificate bool

	rev uint64
}

// NewRow returns a row with every mark Unset and every field empty.
func NewRow(studentID, name, phone string) Row {
	return Row{
		StudentID:   studentID,
		StudentName: name,
		Phone:       phone,
		Weeks:       EmptyWeeks(),
	}
}

// Revision increases with every edit. The auto-saver compares it to know whether a row changed during a save.
func (r Row) Revision() uint64 {
	return r.rev
}

func (r *Row) touch() {
	r.rev++
	r.Dirty = true
}

// SetMark replaces the mark of one day and recomputes the monthly totals.
func (r *Row) SetMark(week int, day Weekday, mark Mark) error {
	if !validWeek(week) {
		return ErrInvalidWeek
	}
	if !day.Valid() {
		return ErrInvalidWeekday
	}
	if !mark.Valid() {
		return ErrInvalidMark
	}
	r.Weeks[week-1].Days[day] = mark
	r.Totals = Aggregate(r.Weeks)
	r.touch()
	return nil
}

// SetWeeklyAssessment sets or clears (nil) the weekly assessment score. Any finite number is accepted.
func (r *Row) SetWeeklyAssessment(week int, score *float64) error {
	if !validWeek(week) {
		return ErrInvalidWeek
	}
	if score != nil && !isFinite(*score) {
		return ErrNotFinite
	}
	r.Weeks[week-1].Assessment = copyFloat(score)
	r.touch()
	return nil
}

// ApplyFieldEdit sets one overall field. Scores take nil or a finite number,
// letter_equivalent takes nil or a letter grade and notes take nil or a string.
func (r *Row) ApplyFieldEdit(field Field, value interface{}) error {
	switch field {
	case FieldOverallScore, FieldTeacherEvaluation1, FieldTeacherEvaluation2, FieldFinalGrade:
		score, err := scoreValue(value)
		if err != nil {
			return errors.Wrapf(err, "%s", field)
		}
		switch field {
		case FieldOverallScore:
			r.OverallScore = score
		case FieldTeacherEvaluation1:
			r.TeacherEvaluation1 = score
		case FieldTeacherEvaluation2:
			r.TeacherEvaluation2 = score
		case FieldFinalGrade:
			r.FinalGrade = score
		}
	case FieldLetterEquivalent:
		letter, err := letterValue(value)
		if err != nil {
			return errors.Wrapf(err, "%s", field)
		}
		r.LetterEquivalent = letter
	case FieldNotes:
		notes, err := notesValue(value)
		if err != nil {
			return errors.Wrapf(err, "%s", field)
		}
		r.Notes = notes
	default:
		return ErrUnknownField
	}
	r.touch()
	return nil
}

// CycleStatus advances the status one step.
func (r *Row) CycleStatus() Status {
	r.Status = r.Status.Advance()
	r.touch()
	return r.Status
}

// MarkSaved records a successful save of the row as it was at revision rev.
// The row stays dirty if it was edited after that revision.
func (r *Row) MarkSaved(persistedID string, rev uint64) {
	if persistedID != "" {
		r.PersistedID = persistedID
	}
	if r.rev == rev {
		r.Dirty = false
	}
}

func scoreValue(value interface{}) (*float64, error) {
	var f float64
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *float64:
		if v == nil {
			return nil, nil
		}
		f = *v
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return nil, ErrInvalidValue
	}
	if !isFinite(f) {
		return nil, ErrNotFinite
	}
	return &f, nil
}

func letterValue(value interface{}) (LetterGrade, error) {
	switch v := value.(type) {
	case nil:
		return LetterNone, nil
	case LetterGrade:
		if !v.Valid() {
			return LetterNone, ErrInvalidLetter
		}
		return v, nil
	case string:
		return ParseLetterGrade(v)
	case *string:
		if v == nil {
			return LetterNone, nil
		}
		return ParseLetterGrade(*v)
	}
	return LetterNone, ErrInvalidValue
}

func notesValue(value interface{}) (*string, error) {
	var s string
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		s = v
	case *string:
		if v == nil {
			return nil, nil
		}
		s = *v
	default:
		return nil, ErrInvalidValue
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
