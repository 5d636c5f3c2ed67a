package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/student"
)

type studentRow struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
	Phone       string `db:"phone"`
}

type studentRegistry struct {
	db *sqlx.DB
}

var _ student.Registry = (*studentRegistry)(nil) // interface compliance check

func NewStudentRegistry(db *sqlx.DB) *studentRegistry {
	return &studentRegistry{db: db}
}

func (repo studentRegistry) ListAssigned(ctx context.Context, teacherID string) ([]student.Student, error) {
	var rows []studentRow
	q := `SELECT s.id, s.display_name, s.phone
FROM student s
JOIN teacher_student ts ON ts.student_id = s.id
WHERE ts.teacher_id = $1
ORDER BY ts.position, ts.assigned_at, s.id`
	if err := repo.db.SelectContext(ctx, &rows, q, teacherID); err != nil {
		return nil, errors.Wrap(err, "listing assigned students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, student.Student{ID: r.ID, DisplayName: r.DisplayName, Phone: r.Phone})
	}
	return students, nil
}

// Assign adds a student and links it to the teacher at the end of the list. Existing rows are updated.
func (repo studentRegistry) Assign(ctx context.Context, teacherID string, s student.Student) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO student (id, display_name, phone) VALUES (:id, :display_name, :phone)
ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, phone = EXCLUDED.phone`,
		studentRow{ID: s.ID, DisplayName: s.DisplayName, Phone: s.Phone})
	if err != nil {
		return errors.Wrap(err, "saving student")
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO teacher_student (teacher_id, student_id, position)
SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM teacher_student WHERE teacher_id = $1
ON CONFLICT (teacher_id, student_id) DO NOTHING`, teacherID, s.ID)
	if err != nil {
		return errors.Wrap(err, "assigning student")
	}
	return errors.Wrap(tx.Commit(), "committing assignment")
}
