package sheet

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/certificate"
	"github.com/trezcool/markaz/core/student"
)

var (
	testMonth = attendance.Month{Year: 2026, Month: 10}
	testNow   = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	errBoom   = errors.New("boom")
)

// fakeClock replaces time.AfterFunc: timers only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasActive := !t.stopped && !t.fired
	t.stopped = true
	return wasActive
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) active() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var active []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			active = append(active, t)
		}
	}
	return active
}

// fire runs every active timer, as if the delay elapsed with no further edit.
func (c *fakeClock) fire() int {
	active := c.active()
	for _, t := range active {
		c.mu.Lock()
		t.fired = true
		c.mu.Unlock()
		t.f()
	}
	return len(active)
}

func setUpClock(t *testing.T) *fakeClock {
	clock := &fakeClock{}
	origAfterFunc, origNow := afterFunc, nowFunc
	afterFunc = clock.afterFunc
	nowFunc = func() time.Time { return testNow }
	t.Cleanup(func() {
		afterFunc = origAfterFunc
		nowFunc = origNow
	})
	return clock
}

type fakeRegistry struct {
	students map[string][]student.Student
	err      error
}

func (r *fakeRegistry) ListAssigned(_ context.Context, teacherID string) ([]student.Student, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.students[teacherID], nil
}

// fakeRecords records every upsert, grouped by batch.
type fakeRecords struct {
	mu       sync.Mutex
	records  map[string]attendance.Record
	upserts  []attendance.Record
	fetchErr error
	failFor  map[string]bool         // {studentID: fail}
	onUpsert func(attendance.Record) // runs before the upsert is stored
	seq      int
}

func newFakeRecords(recs ...attendance.Record) *fakeRecords {
	r := &fakeRecords{records: make(map[string]attendance.Record), failFor: make(map[string]bool)}
	for _, rec := range recs {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *fakeRecords) FetchSheetRecords(_ context.Context, teacherID string, month attendance.Month) ([]attendance.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var recs []attendance.Record
	for _, rec := range r.records {
		if rec.TeacherID == teacherID && rec.Month == month {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (r *fakeRecords) UpsertSheetRecord(_ context.Context, rec attendance.Record) (string, error) {
	if r.onUpsert != nil {
		r.onUpsert(rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = append(r.upserts, rec)
	if r.failFor[rec.StudentID] {
		return "", errBoom
	}
	if rec.ID == "" {
		r.seq++
		rec.ID = fmt.Sprintf("rec-%s-%d", rec.StudentID, r.seq)
	} else if _, ok := r.records[rec.ID]; !ok {
		return "", attendance.ErrNotFound
	}
	r.records[rec.ID] = rec
	return rec.ID, nil
}

func (r *fakeRecords) setFail(studentID string, fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[studentID] = fail
}

func (r *fakeRecords) upserted() []attendance.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]attendance.Record, len(r.upserts))
	copy(out, r.upserts)
	return out
}

func (r *fakeRecords) resetUpserts() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = nil
}

func (r *fakeRecords) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeIssuer struct {
	mu       sync.Mutex
	requests []certificate.Request
	err      error
}

func (i *fakeIssuer) IssueCertificate(_ context.Context, req certificate.Request) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.requests = append(i.requests, req)
	return i.err
}

func (i *fakeIssuer) issued() []certificate.Request {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]certificate.Request, len(i.requests))
	copy(out, i.requests)
	return out
}

type fakeLogger struct {
	mu     sync.Mutex
	errors []string
}

var _ core.Logger = (*fakeLogger)(nil)

func (l *fakeLogger) Debug(string, ...interface{}) {}
func (l *fakeLogger) Info(string, ...interface{})  {}
func (l *fakeLogger) Warn(string, ...interface{})  {}
func (l *fakeLogger) Fatal(string, ...interface{}) {}
func (l *fakeLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *fakeLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

type fixture struct {
	clock    *fakeClock
	registry *fakeRegistry
	records  *fakeRecords
	issuer   *fakeIssuer
	logger   *fakeLogger
	deps     Deps
}

func newFixture(t *testing.T, recs ...attendance.Record) *fixture {
	f := &fixture{
		clock: setUpClock(t),
		registry: &fakeRegistry{students: map[string][]student.Student{
			"t1": {
				{ID: "aisha", DisplayName: "Aisha", Phone: "+966500000001"},
				{ID: "omar", DisplayName: "Omar", Phone: "+966500000002"},
				{ID: "layla", DisplayName: "Layla", Phone: "+966500000003"},
			},
		}},
		records: newFakeRecords(recs...),
		issuer:  &fakeIssuer{},
		logger:  &fakeLogger{},
	}
	f.deps = Deps{
		Registry:      f.registry,
		Records:       f.records,
		Issuer:        f.issuer,
		Logger:        f.logger,
		AutoSaveDelay: time.Second,
	}
	return f
}

func (f *fixture) load(t *testing.T) *Session {
	s, err := Load(context.Background(), f.deps, "t1", testMonth)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	return s
}
