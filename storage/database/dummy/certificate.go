package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/certificate"
)

type certificateRepository struct {
	db *certificateTable
}

var _ certificate.Repository = (*certificateRepository)(nil) // interface compliance check

func NewCertificateRepository(db *DB) *certificateRepository {
	return &certificateRepository{db: db.certificate}
}

func (repo *certificateRepository) CreateCertificate(_ context.Context, cert certificate.Certificate, _ ...core.DBExecutor) (certificate.Certificate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, ok := repo.db.table[cert.SheetRecordID]; ok {
		return *existing, nil
	}
	if cert.ID == "" {
		cert.ID = uuid.New().String()
	}
	repo.db.table[cert.SheetRecordID] = &cert
	return cert, nil
}

func (repo *certificateRepository) GetBySheetRecord(_ context.Context, sheetRecordID string, _ ...core.DBExecutor) (certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cert, ok := repo.db.table[sheetRecordID]; ok {
		return *cert, nil
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

// All returns every stored certificate.
func (repo *certificateRepository) All() []certificate.Certificate {
	repo.db.RLock()
	defer repo.db.RUnlock()

	certs := make([]certificate.Certificate, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		certs = append(certs, *c)
	}
	return certs
}
