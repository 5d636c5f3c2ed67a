package sheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/certificate"
	"github.com/trezcool/markaz/core/student"
)

type (
	// Deps are the collaborators of a sheet session.
	Deps struct {
		Registry      student.Registry
		Records       attendance.Repository
		Issuer        certificate.Issuer // optional
		Logger        core.Logger
		AutoSaveDelay time.Duration
	}

	// SaveStatus backs the "saving…" / "auto-saved" indicator.
	SaveStatus struct {
		Saving      bool      `json:"saving"`
		LastSavedAt time.Time `json:"last_saved_at"`
		Pending     int       `json:"pending"` // rows with unsaved changes
	}

	// Session owns the rows of one teacher's sheet for one month.
	Session struct {
		teacherID string
		month     attendance.Month
		deps      Deps
		saver     *autoSaver

		mu     sync.Mutex
		rows   []attendance.Row
		index  map[string]int // {studentID: position in rows}
		closed bool
	}
)

// Load builds a session with one row per student assigned to the teacher, in registry order.
// Rows take their values from the month's backing records when they exist.
// Records of students no longer assigned to the teacher are ignored.
func Load(ctx context.Context, deps Deps, teacherID string, month attendance.Month) (*Session, error) {
	students, err := deps.Registry.ListAssigned(ctx, teacherID)
	if err != nil {
		return nil, errors.Wrapf(ErrLoadFailed, "listing assigned students: %v", err)
	}
	recs, err := deps.Records.FetchSheetRecords(ctx, teacherID, month)
	if err != nil {
		return nil, errors.Wrapf(ErrLoadFailed, "fetching sheet records: %v", err)
	}

	byStudent := make(map[string]attendance.Record, len(recs))
	for _, rec := range recs {
		if _, ok := byStudent[rec.StudentID]; !ok {
			byStudent[rec.StudentID] = rec
		}
	}

	s := &Session{
		teacherID: teacherID,
		month:     month,
		deps:      deps,
		rows:      make([]attendance.Row, 0, len(students)),
		index:     make(map[string]int, len(students)),
	}
	for _, st := range students {
		if _, dup := s.index[st.ID]; dup {
			continue
		}
		row := attendance.NewRow(st.ID, st.DisplayName, st.Phone)
		if rec, ok := byStudent[st.ID]; ok {
			row.Load(rec)
		}
		s.index[st.ID] = len(s.rows)
		s.rows = append(s.rows, row)
	}
	s.saver = newAutoSaver(deps.AutoSaveDelay, s.saveRows)
	return s, nil
}

func (s *Session) TeacherID() string        { return s.teacherID }
func (s *Session) Month() attendance.Month { return s.month }

// Rows returns a copy of every row, in registry order.
func (s *Session) Rows() []attendance.Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]attendance.Row, len(s.rows))
	copy(rows, s.rows)
	return rows
}

func (s *Session) Row(studentID string) (attendance.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[studentID]
	if !ok {
		return attendance.Row{}, ErrRowNotFound
	}
	return s.rows[i], nil
}

func (s *Session) SetMark(studentID string, week int, day attendance.Weekday, mark attendance.Mark) (attendance.Row, error) {
	return s.edit(studentID, "mark", func(r *attendance.Row) error {
		return r.SetMark(week, day, mark)
	})
}

func (s *Session) SetWeeklyAssessment(studentID string, week int, score *float64) (attendance.Row, error) {
	return s.edit(studentID, "weekly_assessment", func(r *attendance.Row) error {
		return r.SetWeeklyAssessment(week, score)
	})
}

func (s *Session) SetField(studentID string, field attendance.Field, value interface{}) (attendance.Row, error) {
	return s.edit(studentID, string(field), func(r *attendance.Row) error {
		return r.ApplyFieldEdit(field, value)
	})
}

// CycleStatus advances the row's status: Unset -> Passed -> Repeat -> Unset.
func (s *Session) CycleStatus(studentID string) (attendance.Row, error) {
	return s.edit(studentID, "status", func(r *attendance.Row) error {
		r.CycleStatus()
		return nil
	})
}

// edit applies fn to the student's row under the session lock and schedules the auto-save.
func (s *Session) edit(studentID, field string, fn func(r *attendance.Row) error) (attendance.Row, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return attendance.Row{}, ErrSessionClosed
	}
	i, ok := s.index[studentID]
	if !ok {
		s.mu.Unlock()
		return attendance.Row{}, ErrRowNotFound
	}
	if err := fn(&s.rows[i]); err != nil {
		s.mu.Unlock()
		return attendance.Row{}, editError(err, field)
	}
	row := s.rows[i]
	s.saver.touch(studentID) // under s.mu, so a concurrent Close sees the row queued
	s.mu.Unlock()
	return row, nil
}

func (s *Session) SaveStatus() SaveStatus {
	saving, lastSavedAt, _ := s.saver.status()
	return SaveStatus{
		Saving:      saving,
		LastSavedAt: lastSavedAt,
		Pending:     s.pending(),
	}
}

func (s *Session) dirtyIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, r := range s.rows {
		if r.Dirty {
			ids = append(ids, r.StudentID)
		}
	}
	return ids
}

func (s *Session) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	for _, r := range s.rows {
		if r.Dirty {
			n++
		}
	}
	return n
}

// Flush cancels the pending auto-save and saves every dirty row now.
// It returns ErrUnsavedChanges when some rows could not be saved.
func (s *Session) Flush(ctx context.Context) error {
	s.saver.queue(s.dirtyIDs()...)
	s.saver.flush(ctx)
	if n := s.pending(); n > 0 {
		return errors.Wrapf(ErrUnsavedChanges, "%d row(s) still dirty", n)
	}
	return nil
}

// Close flushes the session and rejects further edits.
// When rows could not be saved, the session stays open and ErrUnsavedChanges is returned.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.saver.stop()
	if err := s.Flush(ctx); err != nil {
		s.mu.Lock()
		s.closed = false
		s.mu.Unlock()
		s.saver.restart()
		return err
	}
	return nil
}

// Discard closes the session without saving.
func (s *Session) Discard() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.saver.stop()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// saveRows persists a snapshot of the given dirty rows outside the session lock, so edits can go on meanwhile.
func (s *Session) saveRows(ctx context.Context, ids []string) (failed []string, saved int) {
	type snapshot struct {
		row attendance.Row
		rev uint64
	}

	s.mu.Lock()
	batch := make([]snapshot, 0, len(ids))
	for _, id := range ids {
		i, ok := s.index[id]
		if !ok || !s.rows[i].Dirty {
			continue
		}
		batch = append(batch, snapshot{row: s.rows[i], rev: s.rows[i].Revision()})
	}
	s.mu.Unlock()

	for _, snap := range batch {
		id, err := s.deps.Records.UpsertSheetRecord(ctx, snap.row.Record(s.teacherID, s.month))
		if err != nil {
			s.logError(fmt.Sprintf("saving sheet row of student %s (%s): %v", snap.row.StudentID, s.month, err), err)
			failed = append(failed, snap.row.StudentID)
			continue
		}
		saved++

		s.mu.Lock()
		live := &s.rows[s.index[snap.row.StudentID]]
		live.MarkSaved(id, snap.rev)
		issue := snap.row.Status == attendance.StatusPassed && !live.HasCertificate
		s.mu.Unlock()

		if issue {
			s.issueCertificate(ctx, snap.row, id)
		}
	}
	return failed, saved
}

// issueCertificate asks for the certificate of a row saved as Passed. Failures are only logged.
func (s *Session) issueCertificate(ctx context.Context, row attendance.Row, recordID string) {
	if s.deps.Issuer == nil {
		return
	}
	err := s.deps.Issuer.IssueCertificate(ctx, certificate.Request{
		StudentID:     row.StudentID,
		StudentName:   row.StudentName,
		TeacherID:     s.teacherID,
		SheetRecordID: recordID,
		IssueDate:     nowFunc().UTC(),
	})
	if err != nil {
		s.logError(fmt.Sprintf("issuing certificate of student %s (%s): %v", row.StudentID, s.month, err), err)
		return
	}

	s.mu.Lock()
	s.rows[s.index[row.StudentID]].HasCertificate = true
	s.mu.Unlock()
}

func (s *Session) logError(msg string, err error) {
	if s.deps.Logger != nil {
		s.deps.Logger.Error(msg, err, core.Person{ID: s.teacherID})
	}
}
