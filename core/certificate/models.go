package certificate

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
)

var (
	ErrNotFound       = errors.New("certificate not found")
	ErrInvalidRequest = errors.New("invalid certificate request")
)

type (
	// Request asks for a certificate for the student of a saved sheet record.
	Request struct {
		StudentID     string
		StudentName   string // optional, used in the office notice
		TeacherID     string
		SheetRecordID string
		IssueDate     time.Time
	}

	// Issuer issues certificates.
	Issuer interface {
		IssueCertificate(ctx context.Context, req Request) error
	}

	Certificate struct {
		ID            string
		Serial        string
		StudentID     string
		TeacherID     string
		SheetRecordID string
		IssueDate     time.Time
		CreatedAt     time.Time
	}

	Repository interface {
		CreateCertificate(ctx context.Context, cert Certificate, exec ...core.DBExecutor) (Certificate, error)
		// GetBySheetRecord returns ErrNotFound when the record has no certificate.
		GetBySheetRecord(ctx context.Context, sheetRecordID string, exec ...core.DBExecutor) (Certificate, error)
	}
)
