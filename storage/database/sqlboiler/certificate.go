package boiledrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/certificate"
)

var certificateColumns = []string{"id", "serial", "student_id", "teacher_id", "sheet_record_id", "issue_date", "created_at"}

type certificateRow struct {
	ID            string    `boil:"id"`
	Serial        string    `boil:"serial"`
	StudentID     string    `boil:"student_id"`
	TeacherID     string    `boil:"teacher_id"`
	SheetRecordID string    `boil:"sheet_record_id"`
	IssueDate     time.Time `boil:"issue_date"`
	CreatedAt     time.Time `boil:"created_at"`
}

type certificateRepository struct {
	repository
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(exec core.DBExecutor) *certificateRepository {
	return &certificateRepository{repository{exec: exec}}
}

func (repo certificateRepository) unboil(c *certificateRow) certificate.Certificate {
	return certificate.Certificate{
		ID:            c.ID,
		Serial:        c.Serial,
		StudentID:     c.StudentID,
		TeacherID:     c.TeacherID,
		SheetRecordID: c.SheetRecordID,
		IssueDate:     c.IssueDate.UTC(),
		CreatedAt:     c.CreatedAt.UTC(),
	}
}

func (repo certificateRepository) CreateCertificate(ctx context.Context, cert certificate.Certificate, exec ...core.DBExecutor) (certificate.Certificate, error) {
	if cert.ID == "" {
		cert.ID = uuid.New().String()
	}
	if cert.CreatedAt.IsZero() {
		cert.CreatedAt = time.Now().UTC()
	}

	q := fmt.Sprintf(
		`INSERT INTO "certificate" (%s) VALUES (%s)`,
		strings.Join(strmangle.IdentQuoteSlice('"', '"', certificateColumns), ", "),
		strmangle.Placeholders(true, len(certificateColumns), 1, 1),
	)
	_, err := queries.Raw(q, cert.ID, cert.Serial, cert.StudentID, cert.TeacherID, cert.SheetRecordID, cert.IssueDate.UTC(), cert.CreatedAt.UTC()).
		ExecContext(ctx, repo.getExec(exec))
	if err != nil {
		return certificate.Certificate{}, errors.Wrap(err, "inserting certificate")
	}
	return cert, nil
}

func (repo certificateRepository) GetBySheetRecord(ctx context.Context, sheetRecordID string, exec ...core.DBExecutor) (certificate.Certificate, error) {
	if _, err := uuid.Parse(sheetRecordID); err != nil {
		return certificate.Certificate{}, certificate.ErrNotFound
	}

	var c certificateRow
	q := fmt.Sprintf(
		`SELECT %s FROM "certificate" WHERE "sheet_record_id" = $1`,
		strings.Join(strmangle.IdentQuoteSlice('"', '"', certificateColumns), ", "),
	)
	if err := queries.Raw(q, sheetRecordID).Bind(ctx, repo.getExec(exec), &c); err != nil {
		return certificate.Certificate{}, trapNoRowsErr(err, certificate.ErrNotFound, "finding certificate by sheet record")
	}
	return repo.unboil(&c), nil
}
