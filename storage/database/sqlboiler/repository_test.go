package boiledrepos_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/certificate"
	boiledrepos "github.com/trezcool/markaz/storage/database/sqlboiler"
	testutil "github.com/trezcool/markaz/tests"
)

const teacherID = "t1"

func createStudent(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec(`INSERT INTO student (id, display_name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
	return id
}

func TestSheetRecordRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := boiledrepos.NewSheetRecordRepository(db)
	ctx := context.Background()

	month, _ := attendance.ParseMonth("2026-10")
	studentID := createStudent(t, db, "Aisha")

	weeks := attendance.EmptyWeeks()
	weeks[0].Days[attendance.Sunday] = attendance.Present
	weeks[0].Days[attendance.Monday] = attendance.VeryLate
	weeks[2].Assessment = testutil.Float(17.5)
	rec := attendance.Record{
		TeacherID:        teacherID,
		StudentID:        studentID,
		Month:            month,
		Weeks:            weeks,
		FinalGrade:       testutil.Float(88),
		LetterEquivalent: attendance.LetterBPlus,
		Notes:            testutil.String("joined late"),
	}

	id, err := repo.UpsertSheetRecord(ctx, rec)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	t.Run("fetch", func(t *testing.T) {
		recs, err := repo.FetchSheetRecords(ctx, teacherID, month)
		require.NoError(t, err)
		require.Len(t, recs, 1)

		got := recs[0]
		assert.Equal(t, id, got.ID)
		assert.Equal(t, month, got.Month)
		assert.Equal(t, weeks, got.Weeks)
		assert.Nil(t, got.OverallScore)
		assert.Equal(t, 88.0, *got.FinalGrade)
		assert.Equal(t, attendance.LetterBPlus, got.LetterEquivalent)
		assert.Equal(t, attendance.StatusUnset, got.Status)
		assert.Equal(t, "joined late", *got.Notes)
		assert.False(t, got.HasCertificate)
	})

	t.Run("other month is empty", func(t *testing.T) {
		other, _ := attendance.ParseMonth("2026-11")
		recs, err := repo.FetchSheetRecords(ctx, teacherID, other)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("update by id", func(t *testing.T) {
		upd := rec
		upd.ID = id
		upd.Status = attendance.StatusPassed
		upd.Notes = nil

		gotID, err := repo.UpsertSheetRecord(ctx, upd)
		require.NoError(t, err)
		assert.Equal(t, id, gotID)

		recs, err := repo.FetchSheetRecords(ctx, teacherID, month)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, attendance.StatusPassed, recs[0].Status)
		assert.Nil(t, recs[0].Notes)
	})

	t.Run("insert of an existing row updates it", func(t *testing.T) {
		dup := rec
		dup.OverallScore = testutil.Float(90)

		gotID, err := repo.UpsertSheetRecord(ctx, dup)
		require.NoError(t, err)
		assert.Equal(t, id, gotID)
	})

	t.Run("unknown id", func(t *testing.T) {
		for _, badID := range []string{uuid.New().String(), "lol"} {
			upd := rec
			upd.ID = badID
			_, err := repo.UpsertSheetRecord(ctx, upd)
			assert.Equal(t, attendance.ErrNotFound, err)
		}
	})

	t.Run("certificate is reported", func(t *testing.T) {
		certs := boiledrepos.NewCertificateRepository(db)
		_, err := certs.CreateCertificate(ctx, certificate.Certificate{
			Serial:        certificate.NewSerial(month.Start()),
			StudentID:     studentID,
			TeacherID:     teacherID,
			SheetRecordID: id,
			IssueDate:     time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		recs, err := repo.FetchSheetRecords(ctx, teacherID, month)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.True(t, recs[0].HasCertificate)
	})
}

func TestCertificateRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := boiledrepos.NewCertificateRepository(db)
	ctx := context.Background()

	month, _ := attendance.ParseMonth("2026-10")
	studentID := createStudent(t, db, "Omar")
	recordID, err := boiledrepos.NewSheetRecordRepository(db).UpsertSheetRecord(ctx, attendance.Record{
		TeacherID: teacherID,
		StudentID: studentID,
		Month:     month,
		Weeks:     attendance.EmptyWeeks(),
		Status:    attendance.StatusPassed,
	})
	require.NoError(t, err)

	_, err = repo.GetBySheetRecord(ctx, recordID)
	assert.Equal(t, certificate.ErrNotFound, err)
	_, err = repo.GetBySheetRecord(ctx, "lol")
	assert.Equal(t, certificate.ErrNotFound, err)

	issued := time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)
	cert, err := repo.CreateCertificate(ctx, certificate.Certificate{
		Serial:        certificate.NewSerial(issued),
		StudentID:     studentID,
		TeacherID:     teacherID,
		SheetRecordID: recordID,
		IssueDate:     issued,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cert.ID)

	got, err := repo.GetBySheetRecord(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, cert.ID, got.ID)
	assert.Equal(t, cert.Serial, got.Serial)
	assert.True(t, issued.Equal(got.IssueDate))

	t.Run("one certificate per sheet record", func(t *testing.T) {
		_, err := repo.CreateCertificate(ctx, certificate.Certificate{
			Serial:        certificate.NewSerial(issued),
			StudentID:     studentID,
			TeacherID:     teacherID,
			SheetRecordID: recordID,
			IssueDate:     issued,
		})
		assert.Error(t, err)
	})
}
