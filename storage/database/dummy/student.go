package dummydb

import (
	"context"

	"github.com/trezcool/markaz/core/student"
)

type studentRegistry struct {
	db *studentTable
}

var _ student.Registry = (*studentRegistry)(nil) // interface compliance check

func NewStudentRegistry(db *DB) *studentRegistry {
	return &studentRegistry{db: db.student}
}

// Assign appends students to the teacher's list, keeping the given order.
func (repo *studentRegistry) Assign(teacherID string, students ...student.Student) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.assigned[teacherID] = append(repo.db.assigned[teacherID], students...)
}

// Unassign removes a student from the teacher's list.
func (repo *studentRegistry) Unassign(teacherID, studentID string) {
	repo.db.Lock()
	defer repo.db.Unlock()

	students := repo.db.assigned[teacherID]
	kept := students[:0]
	for _, s := range students {
		if s.ID != studentID {
			kept = append(kept, s)
		}
	}
	repo.db.assigned[teacherID] = kept
}

func (repo *studentRegistry) ListAssigned(_ context.Context, teacherID string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, len(repo.db.assigned[teacherID]))
	copy(students, repo.db.assigned[teacherID])
	return students, nil
}
