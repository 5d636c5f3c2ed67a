package attendance

import "context"

// Record is the durable copy of a Row. HasCertificate is derived by the store and never written.
type Record struct {
	ID        string
	TeacherID string
	StudentID string
	Month     Month

	Weeks              [WeeksPerMonth]WeeklyRecord
	OverallScore       *float64
	TeacherEvaluation1 *float64
	TeacherEvaluation2 *float64
	FinalGrade         *float64
	LetterEquivalent   LetterGrade
	Status             Status
	Notes              *string

	HasCertificate bool
}

// Repository is the attendance backing store.
type Repository interface {
	// FetchSheetRecords returns every record of the teacher for the month.
	FetchSheetRecords(ctx context.Context, teacherID string, month Month) ([]Record, error)
	// UpsertSheetRecord updates the record when rec.ID is set, inserts it otherwise, and returns its id.
	UpsertSheetRecord(ctx context.Context, rec Record) (string, error)
}

// Load replaces the row's persisted fields by the record's. The row comes out clean.
func (r *Row) Load(rec Record) {
	r.Weeks = rec.Weeks
	for i := range r.Weeks {
		r.Weeks[i].Week = i + 1
	}
	r.Totals = Aggregate(r.Weeks)
	r.OverallScore = copyFloat(rec.OverallScore)
	r.TeacherEvaluation1 = copyFloat(rec.TeacherEvaluation1)
	r.TeacherEvaluation2 = copyFloat(rec.TeacherEvaluation2)
	r.FinalGrade = copyFloat(rec.FinalGrade)
	r.LetterEquivalent = rec.LetterEquivalent
	r.Status = rec.Status
	r.Notes = rec.Notes
	r.PersistedID = rec.ID
	r.HasCertificate = rec.HasCertificate
	r.Dirty = false
}

// Record returns the persisted fields of the row for the teacher's month.
func (r Row) Record(teacherID string, month Month) Record {
	return Record{
		ID:                 r.PersistedID,
		TeacherID:          teacherID,
		StudentID:          r.StudentID,
		Month:              month,
		Weeks:              r.Weeks,
		OverallScore:       copyFloat(r.OverallScore),
		TeacherEvaluation1: copyFloat(r.TeacherEvaluation1),
		TeacherEvaluation2: copyFloat(r.TeacherEvaluation2),
		FinalGrade:         copyFloat(r.FinalGrade),
		LetterEquivalent:   r.LetterEquivalent,
		Status:             r.Status,
		Notes:              r.Notes,
		HasCertificate:     r.HasCertificate,
	}
}
