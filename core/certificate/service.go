package certificate

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
)

var nowFunc = time.Now // mockable

type Service struct {
	db      core.DB // nil when the repository is not backed by SQL
	repo    Repository
	mailSvc core.EmailService
	office  mail.Address
}

var _ Issuer = (*Service)(nil)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		mailSvc: mailSvc,
		office:  conf.OfficeEmail,
	}
}

// IssueCertificate stores a certificate for the sheet record and notifies the office.
// A record gets at most one certificate: issuing again is a no-op.
func (svc *Service) IssueCertificate(ctx context.Context, req Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if req.IssueDate.IsZero() {
		req.IssueDate = nowFunc()
	}

	var cert Certificate
	var created bool
	err := svc.inTx(ctx, func(exec ...core.DBExecutor) error {
		existing, err := svc.repo.GetBySheetRecord(ctx, req.SheetRecordID, exec...)
		if err == nil {
			cert = existing
			return nil
		}
		if err != ErrNotFound {
			return errors.Wrap(err, "finding certificate by sheet record")
		}

		cert, err = svc.repo.CreateCertificate(ctx, Certificate{
			ID:            uuid.New().String(),
			Serial:        NewSerial(req.IssueDate),
			StudentID:     req.StudentID,
			TeacherID:     req.TeacherID,
			SheetRecordID: req.SheetRecordID,
			IssueDate:     req.IssueDate.UTC(),
			CreatedAt:     nowFunc().UTC(),
		}, exec...)
		if err != nil {
			return errors.Wrap(err, "creating certificate")
		}
		created = true
		return nil
	})
	if err != nil {
		return err
	}

	if created {
		svc.notifyOffice(cert, req.StudentName)
	}
	return nil
}

func (svc *Service) GetBySheetRecord(ctx context.Context, sheetRecordID string) (Certificate, error) {
	return svc.repo.GetBySheetRecord(ctx, sheetRecordID)
}

func (svc *Service) inTx(ctx context.Context, fn func(exec ...core.DBExecutor) error) error {
	if svc.db == nil {
		return fn()
	}
	return core.RunInTx(ctx, svc.db, func(tx core.DBTransactor) error { return fn(tx) })
}

func (svc *Service) notifyOffice(cert Certificate, studentName string) {
	if svc.mailSvc == nil || svc.office.Address == "" {
		return
	}
	if studentName == "" {
		studentName = "-"
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{svc.office},
		Subject:      "Certificate " + cert.Serial + " issued",
		TemplateName: "certificate_issued",
		TemplateData: map[string]interface{}{
			"Serial":      cert.Serial,
			"StudentID":   cert.StudentID,
			"StudentName": studentName,
			"TeacherID":   cert.TeacherID,
			"IssueDate":   cert.IssueDate.Format("2006-01-02"),
		},
	})
}

// NewSerial returns a certificate serial such as CERT-202610-1A2B3C4D.
func NewSerial(issueDate time.Time) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("CERT-%s-%s", issueDate.Format("200601"), strings.ToUpper(id[:8]))
}

func validateRequest(req Request) error {
	var flds []core.FieldError
	if strings.TrimSpace(req.StudentID) == "" {
		flds = append(flds, core.FieldError{Field: "student_id", Error: "this field is required"})
	}
	if strings.TrimSpace(req.TeacherID) == "" {
		flds = append(flds, core.FieldError{Field: "teacher_id", Error: "this field is required"})
	}
	if strings.TrimSpace(req.SheetRecordID) == "" {
		flds = append(flds, core.FieldError{Field: "sheet_record_id", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrInvalidRequest, flds...)
	}
	return nil
}
