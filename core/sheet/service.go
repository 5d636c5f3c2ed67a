package sheet

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core/attendance"
)

type (
	// Service keeps at most one open session per teacher.
	Service struct {
		deps Deps

		mu      sync.Mutex
		entries map[string]*entry // {teacherID: entry}
	}

	entry struct {
		mu      sync.Mutex // serializes open/close of the teacher's session
		session *Session
	}
)

func NewService(deps Deps) *Service {
	return &Service{
		deps:    deps,
		entries: make(map[string]*entry),
	}
}

func (svc *Service) entry(teacherID string) *entry {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	e, ok := svc.entries[teacherID]
	if !ok {
		e = &entry{}
		svc.entries[teacherID] = e
	}
	return e
}

// Open returns the teacher's session for the month, loading it if needed.
// Switching months closes the previous session first; the switch is aborted
// (and the previous session kept open) when its pending edits cannot be saved.
func (svc *Service) Open(ctx context.Context, teacherID string, month attendance.Month) (*Session, error) {
	e := svc.entry(teacherID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if cur := e.session; cur != nil && !cur.Closed() {
		if cur.Month() == month {
			return cur, nil
		}
		if err := cur.Close(ctx); err != nil {
			return nil, errors.Wrapf(err, "closing sheet of %s", cur.Month())
		}
	}
	e.session = nil

	s, err := Load(ctx, svc.deps, teacherID, month)
	if err != nil {
		return nil, err
	}
	e.session = s
	return s, nil
}

// Get returns the teacher's open session for the month.
func (svc *Service) Get(teacherID string, month attendance.Month) (*Session, error) {
	e := svc.entry(teacherID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if s := e.session; s != nil && !s.Closed() && s.Month() == month {
		return s, nil
	}
	return nil, ErrSessionNotFound
}

// Close flushes and closes the teacher's session, if any.
func (svc *Service) Close(ctx context.Context, teacherID string) error {
	e := svc.entry(teacherID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}
	if err := e.session.Close(ctx); err != nil {
		return err
	}
	e.session = nil
	return nil
}

// Shutdown closes every open session. Sessions that cannot be saved are discarded and reported.
func (svc *Service) Shutdown(ctx context.Context) error {
	svc.mu.Lock()
	entries := make(map[string]*entry, len(svc.entries))
	for id, e := range svc.entries {
		entries[id] = e
	}
	svc.mu.Unlock()

	var failed int
	for teacherID, e := range entries {
		e.mu.Lock()
		if s := e.session; s != nil {
			if err := s.Close(ctx); err != nil {
				failed++
				if svc.deps.Logger != nil {
					svc.deps.Logger.Error(fmt.Sprintf("discarding sheet of teacher %s (%s): %v", teacherID, s.Month(), err), err)
				}
				s.Discard()
			}
			e.session = nil
		}
		e.mu.Unlock()
	}
	if failed > 0 {
		return errors.Wrapf(ErrUnsavedChanges, "%d sheet(s) discarded", failed)
	}
	return nil
}
