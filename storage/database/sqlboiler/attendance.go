package boiledrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/types"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
)

const sheetRecordTable = "sheet_record"

var (
	// writable columns, in insert order
	sheetRecordColumns = []string{
		"id", "teacher_id", "student_id", "month", "weeks",
		"overall_score", "teacher_evaluation_1", "teacher_evaluation_2", "final_grade",
		"letter_equivalent", "status", "notes",
	}
	// columns an upsert may change
	sheetRecordUpdateColumns = sheetRecordColumns[4:]

	sheetRecordSelect = `SELECT r.id, r.teacher_id, r.student_id, r.month, r.weeks,
       r.overall_score, r.teacher_evaluation_1, r.teacher_evaluation_2, r.final_grade,
       r.letter_equivalent, r.status, r.notes, (c.id IS NOT NULL) AS has_certificate
FROM "sheet_record" r
LEFT JOIN "certificate" c ON c.sheet_record_id = r.id`
)

type sheetRecord struct {
	ID                 string       `boil:"id"`
	TeacherID          string       `boil:"teacher_id"`
	StudentID          string       `boil:"student_id"`
	Month              string       `boil:"month"`
	Weeks              types.JSON   `boil:"weeks"`
	OverallScore       null.Float64 `boil:"overall_score"`
	TeacherEvaluation1 null.Float64 `boil:"teacher_evaluation_1"`
	TeacherEvaluation2 null.Float64 `boil:"teacher_evaluation_2"`
	FinalGrade         null.Float64 `boil:"final_grade"`
	LetterEquivalent   null.String  `boil:"letter_equivalent"`
	Status             string       `boil:"status"`
	Notes              null.String  `boil:"notes"`
	HasCertificate     bool         `boil:"has_certificate"`
}

type sheetRecordRepository struct {
	repository
}

var _ attendance.Repository = (*sheetRecordRepository)(nil) // interface compliance check

func NewSheetRecordRepository(exec core.DBExecutor) *sheetRecordRepository {
	return &sheetRecordRepository{repository{exec: exec}}
}

func (repo sheetRecordRepository) boil(rec attendance.Record) (*sheetRecord, error) {
	r := &sheetRecord{
		ID:                 rec.ID,
		TeacherID:          rec.TeacherID,
		StudentID:          rec.StudentID,
		Month:              rec.Month.String(),
		OverallScore:       null.Float64FromPtr(rec.OverallScore),
		TeacherEvaluation1: null.Float64FromPtr(rec.TeacherEvaluation1),
		TeacherEvaluation2: null.Float64FromPtr(rec.TeacherEvaluation2),
		FinalGrade:         null.Float64FromPtr(rec.FinalGrade),
		LetterEquivalent:   null.NewString(string(rec.LetterEquivalent), rec.LetterEquivalent != attendance.LetterNone),
		Status:             string(rec.Status),
		Notes:              null.StringFromPtr(rec.Notes),
	}
	if err := r.Weeks.Marshal(rec.Weeks); err != nil {
		return nil, errors.Wrap(err, "marshalling weeks")
	}
	return r, nil
}

func (repo sheetRecordRepository) unboil(r *sheetRecord) (attendance.Record, error) {
	month, err := attendance.ParseMonth(strings.TrimSpace(r.Month))
	if err != nil {
		return attendance.Record{}, errors.Wrapf(err, "sheet record %s", r.ID)
	}
	rec := attendance.Record{
		ID:                 r.ID,
		TeacherID:          r.TeacherID,
		StudentID:          r.StudentID,
		Month:              month,
		Weeks:              attendance.EmptyWeeks(),
		OverallScore:       r.OverallScore.Ptr(),
		TeacherEvaluation1: r.TeacherEvaluation1.Ptr(),
		TeacherEvaluation2: r.TeacherEvaluation2.Ptr(),
		FinalGrade:         r.FinalGrade.Ptr(),
		LetterEquivalent:   attendance.LetterGrade(r.LetterEquivalent.String),
		Status:             attendance.Status(r.Status),
		Notes:              r.Notes.Ptr(),
		HasCertificate:     r.HasCertificate,
	}

	var weeks []attendance.WeeklyRecord
	if err = r.Weeks.Unmarshal(&weeks); err != nil {
		return attendance.Record{}, errors.Wrapf(err, "unmarshalling weeks of sheet record %s", r.ID)
	}
	for _, wr := range weeks {
		rec.Weeks[wr.Week-1] = wr
	}
	return rec, nil
}

func (repo sheetRecordRepository) FetchSheetRecords(ctx context.Context, teacherID string, month attendance.Month) ([]attendance.Record, error) {
	var rows []*sheetRecord
	q := sheetRecordSelect + "\nWHERE r.teacher_id = $1 AND r.month = $2\nORDER BY r.created_at, r.id"
	if err := queries.Raw(q, teacherID, month.String()).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying sheet records")
	}

	recs := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := repo.unboil(r)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// UpsertSheetRecord updates by id when the record has one. Otherwise it inserts, and a concurrent
// insert of the same (teacher, student, month) becomes an update of that record.
func (repo sheetRecordRepository) UpsertSheetRecord(ctx context.Context, rec attendance.Record) (string, error) {
	if rec.ID != "" {
		if _, err := uuid.Parse(rec.ID); err != nil {
			return "", attendance.ErrNotFound
		}
		return repo.update(ctx, rec)
	}
	rec.ID = uuid.New().String()
	return repo.insert(ctx, rec)
}

func (repo sheetRecordRepository) insert(ctx context.Context, rec attendance.Record) (string, error) {
	r, err := repo.boil(rec)
	if err != nil {
		return "", err
	}

	excluded := make([]string, 0, len(sheetRecordUpdateColumns))
	for _, col := range sheetRecordUpdateColumns {
		excluded = append(excluded, fmt.Sprintf(`"%s" = EXCLUDED."%s"`, col, col))
	}
	q := fmt.Sprintf(
		`INSERT INTO "%s" (%s) VALUES (%s) ON CONFLICT ("teacher_id", "student_id", "month") DO UPDATE SET %s, "updated_at" = now() RETURNING "id"`,
		sheetRecordTable,
		strings.Join(strmangle.IdentQuoteSlice('"', '"', sheetRecordColumns), ", "),
		strmangle.Placeholders(true, len(sheetRecordColumns), 1, 1),
		strings.Join(excluded, ", "),
	)

	var id string
	args := []interface{}{
		r.ID, r.TeacherID, r.StudentID, r.Month, r.Weeks,
		r.OverallScore, r.TeacherEvaluation1, r.TeacherEvaluation2, r.FinalGrade,
		r.LetterEquivalent, r.Status, r.Notes,
	}
	if err = queries.Raw(q, args...).QueryRowContext(ctx, repo.exec).Scan(&id); err != nil {
		return "", errors.Wrap(err, "inserting sheet record")
	}
	return id, nil
}

func (repo sheetRecordRepository) update(ctx context.Context, rec attendance.Record) (string, error) {
	r, err := repo.boil(rec)
	if err != nil {
		return "", err
	}

	q := fmt.Sprintf(
		`UPDATE "%s" SET %s, "updated_at" = now() WHERE "id" = $%d RETURNING "id"`,
		sheetRecordTable,
		strmangle.SetParamNames(`"`, `"`, 1, sheetRecordUpdateColumns),
		len(sheetRecordUpdateColumns)+1,
	)

	var id string
	args := []interface{}{
		r.Weeks, r.OverallScore, r.TeacherEvaluation1, r.TeacherEvaluation2, r.FinalGrade,
		r.LetterEquivalent, r.Status, r.Notes, r.ID,
	}
	if err = queries.Raw(q, args...).QueryRowContext(ctx, repo.exec).Scan(&id); err != nil {
		return "", trapNoRowsErr(err, attendance.ErrNotFound, "updating sheet record")
	}
	return id, nil
}
