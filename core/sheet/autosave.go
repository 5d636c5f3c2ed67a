package sheet

import (
	"context"
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiescence period after the last edit before dirty rows are saved.
const DefaultAutoSaveDelay = time.Second

type timer interface {
	Stop() bool
}

var (
	afterFunc = func(d time.Duration, f func()) timer { return time.AfterFunc(d, f) } // mockable
	nowFunc   = time.Now                                                              // mockable
)

// saveFunc persists the rows of the given students and returns the ids that failed and how many rows were saved.
type saveFunc func(ctx context.Context, ids []string) (failed []string, saved int)

// autoSaver debounces edits with a single timer shared by every row of a session.
// When the timer fires, the dirty set is snapshotted, cleared and handed to save.
type autoSaver struct {
	delay time.Duration
	save  saveFunc

	mu          sync.Mutex
	dirty       map[string]struct{}
	timer       timer
	stopped     bool
	saving      bool
	lastSavedAt time.Time

	batchMu sync.Mutex // batches never overlap
}

func newAutoSaver(delay time.Duration, save saveFunc) *autoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &autoSaver{
		delay: delay,
		save:  save,
		dirty: make(map[string]struct{}),
	}
}

// touch marks the student's row dirty and restarts the timer.
func (as *autoSaver) touch(id string) {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.stopped {
		return
	}
	as.dirty[id] = struct{}{}
	if as.timer != nil {
		as.timer.Stop()
	}
	as.timer = afterFunc(as.delay, as.fire)
}

// queue adds rows to the dirty set without touching the timer, even when stopped.
func (as *autoSaver) queue(ids ...string) {
	as.mu.Lock()
	defer as.mu.Unlock()
	for _, id := range ids {
		as.dirty[id] = struct{}{}
	}
}

func (as *autoSaver) fire() {
	as.runBatch(context.Background())
}

// flush cancels the pending timer and saves the dirty rows right away.
func (as *autoSaver) flush(ctx context.Context) {
	as.mu.Lock()
	if as.timer != nil {
		as.timer.Stop()
		as.timer = nil
	}
	as.mu.Unlock()

	as.runBatch(ctx)
}

func (as *autoSaver) runBatch(ctx context.Context) {
	as.batchMu.Lock()
	defer as.batchMu.Unlock()

	as.mu.Lock()
	if len(as.dirty) == 0 {
		as.mu.Unlock()
		return
	}
	ids := make([]string, 0, len(as.dirty))
	for id := range as.dirty {
		ids = append(ids, id)
	}
	as.dirty = make(map[string]struct{})
	as.saving = true
	as.mu.Unlock()

	failed, saved := as.save(ctx, ids)

	as.mu.Lock()
	defer as.mu.Unlock()
	for _, id := range failed {
		as.dirty[id] = struct{}{} // retried by the next batch
	}
	as.saving = false
	if saved > 0 {
		as.lastSavedAt = nowFunc().UTC()
	}
}

// stop cancels the pending timer and ignores further edits.
func (as *autoSaver) stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	as.stopped = true
	if as.timer != nil {
		as.timer.Stop()
		as.timer = nil
	}
}

// restart resumes after stop, scheduling a batch if rows are still dirty.
func (as *autoSaver) restart() {
	as.mu.Lock()
	defer as.mu.Unlock()

	as.stopped = false
	if len(as.dirty) > 0 {
		as.timer = afterFunc(as.delay, as.fire)
	}
}

func (as *autoSaver) status() (saving bool, lastSavedAt time.Time, queued int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.saving, as.lastSavedAt, len(as.dirty)
}
