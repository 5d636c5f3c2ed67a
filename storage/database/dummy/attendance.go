package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/markaz/core/attendance"
)

type recordRepository struct {
	db    *recordTable
	certs *certificateTable
}

var _ attendance.Repository = (*recordRepository)(nil) // interface compliance check

func NewRecordRepository(db *DB) *recordRepository {
	return &recordRepository{db: db.record, certs: db.certificate}
}

func (repo *recordRepository) hasCertificate(recordID string) bool {
	repo.certs.RLock()
	defer repo.certs.RUnlock()
	_, ok := repo.certs.table[recordID]
	return ok
}

func (repo *recordRepository) FetchSheetRecords(_ context.Context, teacherID string, month attendance.Month) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []attendance.Record
	for _, id := range repo.db.order {
		rec := *repo.db.table[id]
		if rec.TeacherID == teacherID && rec.Month == month {
			rec.HasCertificate = repo.hasCertificate(rec.ID)
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (repo *recordRepository) UpsertSheetRecord(_ context.Context, rec attendance.Record) (string, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.HasCertificate = false // derived, never stored
	if rec.ID != "" {
		if _, ok := repo.db.table[rec.ID]; !ok {
			return "", attendance.ErrNotFound
		}
		repo.db.table[rec.ID] = &rec
		return rec.ID, nil
	}

	// (teacher, student, month) is unique
	for _, id := range repo.db.order {
		existing := repo.db.table[id]
		if existing.TeacherID == rec.TeacherID && existing.StudentID == rec.StudentID && existing.Month == rec.Month {
			rec.ID = id
			repo.db.table[id] = &rec
			return id, nil
		}
	}

	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	repo.db.order = append(repo.db.order, rec.ID)
	return rec.ID, nil
}

// Count returns the number of stored records.
func (repo *recordRepository) Count() int {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table)
}
